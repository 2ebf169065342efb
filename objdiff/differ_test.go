package objdiff

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/prefabdiff/graph"
)

func testTemplate() *graph.Node {
	root := graph.New("Player")
	root.AddBehavior(graph.TransformType,
		graph.Vector3Prop("m_LocalPosition", graph.Vector3{}),
		graph.RotationProp("m_LocalRotation", graph.Identity))
	root.AddBehavior("Health",
		graph.Int("health", 100),
		graph.Int("m_GameObject", 7),
		graph.Generic("stats",
			graph.Float("armor", 1.5),
			graph.String("title", "knight")))
	weapon := root.AddChild("Weapon")
	weapon.AddBehavior(graph.TransformType)
	gun := weapon.AddBehavior("Gun", graph.Int("ammo", 10))
	root.AddBehavior("Links",
		graph.RefProp("weapon", graph.RefTo(weapon)),
		graph.RefProp("gun", graph.RefToBehavior(gun)),
		graph.RefProp("material", graph.RefToAsset("Materials/Red")),
		graph.RefProp("none", graph.Ref{}))
	return root
}

// dump renders a tree with its behaviors and property values.
func dump(n *graph.Node) string {
	var b strings.Builder
	var rec func(n *graph.Node, indent string)
	rec = func(n *graph.Node, indent string) {
		fmt.Fprintf(&b, "%s%s\n", indent, n.Name)
		for _, bh := range n.Behaviors() {
			fmt.Fprintf(&b, "%s  [%s]\n", indent, bh.Type)
			bh.Walk(func(path string, p *graph.Property) bool {
				fmt.Fprintf(&b, "%s    %s=%s\n", indent, path, FormatValue(p))
				return true
			})
		}
		for _, c := range n.Children() {
			rec(c, indent+"  ")
		}
	}
	rec(n, "")
	return b.String()
}

func kinds(records []*Record) []Kind {
	res := make([]Kind, len(records))
	for i, r := range records {
		res[i] = r.Kind
	}
	return res
}

func testDiffer() (*Differ, *bytes.Buffer) {
	buf := bytes.NewBuffer(nil)
	return NewDiffer(&Options{Log: slog.New(slog.NewTextHandler(buf, nil))}), buf
}

func TestNoFalsePositives(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	d, logs := testDiffer()
	if got := d.Compute(inst, inst, tmpl, tmpl); len(got) != 0 {
		t.Errorf("expected no diffs, got %v", got)
	}
	w := graph.Resolve(inst, "Weapon")
	if got := d.Compute(w, inst, graph.Resolve(tmpl, "Weapon"), tmpl); len(got) != 0 {
		t.Errorf("expected no diffs on child, got %v", got)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected logs: %s", logs)
	}
}

func TestPropertyDiff(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	inst.Behavior("Health").Lookup("health").Int = 50

	records := Compute(inst, inst, tmpl, tmpl)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %v", records)
	}
	r := records[0]
	if r.Kind != Property || r.Path != "health" || r.Subject != inst.Behavior("Health") {
		t.Fatalf("unexpected record %+v", r.ID())
	}
	if err := r.Apply(); err != nil {
		t.Fatal(err)
	}
	if got := tmpl.Behavior("Health").Lookup("health").Int; got != 50 {
		t.Errorf("template health = %d", got)
	}
	if again := Compute(inst, inst, tmpl, tmpl); len(again) != 0 {
		t.Errorf("expected no diffs after apply, got %v", again)
	}
}

func TestNestedPropertyDiff(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	inst.Behavior("Health").Lookup("stats.title").String = "paladin"

	records := Compute(inst, inst, tmpl, tmpl)
	if len(records) != 1 || records[0].Path != "stats.title" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestAddDiff(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	instWeapon := graph.Resolve(inst, "Weapon")
	inst.AddBehavior("Shield",
		graph.Int("strength", 5),
		graph.RefProp("holder", graph.RefTo(instWeapon)))

	records := Compute(inst, inst, tmpl, tmpl)
	if len(records) != 1 || records[0].Kind != Add {
		t.Fatalf("unexpected records %v", records)
	}
	if err := records[0].Apply(); err != nil {
		t.Fatal(err)
	}
	shield := tmpl.Behavior("Shield")
	if shield == nil {
		t.Fatalf("template has no Shield")
	}
	if got := shield.Lookup("strength").Int; got != 5 {
		t.Errorf("strength = %d", got)
	}
	if got := shield.Lookup("holder").Ref.Node; got != graph.Resolve(tmpl, "Weapon") {
		t.Errorf("holder not retargeted into the template: %v", got)
	}
	if again := Compute(inst, inst, tmpl, tmpl); len(again) != 0 {
		t.Errorf("expected no diffs after apply, got %v", again)
	}
}

func TestAddSameType(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	inst.AddBehavior("AudioSource", graph.String("clip", "step"))
	inst.AddBehavior("AudioSource", graph.String("clip", "jump"))

	records := Compute(inst, inst, tmpl, tmpl)
	if diff := cmp.Diff([]Kind{Add, Add}, kinds(records)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < 2; i++ {
		for _, r := range records {
			if err := r.Apply(); err != nil {
				t.Fatal(err)
			}
		}
		var clips []string
		for _, b := range tmpl.BehaviorsOfType("AudioSource") {
			clips = append(clips, b.Lookup("clip").String)
		}
		if diff := cmp.Diff([]string{"step", "jump"}, clips); diff != "" {
			t.Errorf("pass %d: clips mismatch (-want +got):\n%s", i, diff)
		}
	}
	if again := Compute(inst, inst, tmpl, tmpl); len(again) != 0 {
		t.Errorf("expected no diffs after apply, got %v", again)
	}
}

func TestDeleteDiff(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	inst.RemoveBehavior(inst.Behavior("Links"))

	records := Compute(inst, inst, tmpl, tmpl)
	if len(records) != 1 || records[0].Kind != Delete || records[0].Subject != tmpl.Behavior("Links") {
		t.Fatalf("unexpected records %v", records)
	}
	if err := records[0].Apply(); err != nil {
		t.Fatal(err)
	}
	if tmpl.HasBehavior("Links") {
		t.Errorf("template still has Links")
	}
}

func TestRecordOrder(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	inst.Behavior("Health").Lookup("health").Int = 50
	inst.RemoveBehavior(inst.Behavior("Links"))
	inst.AddBehavior("Shield", graph.Int("strength", 5))

	got := kinds(Compute(inst, inst, tmpl, tmpl))
	want := []Kind{Delete, Add, Property}
	if !slices.Equal(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestIdempotentApply(t *testing.T) {
	tmpl := testTemplate()
	inst := tmpl.CloneTree()
	inst.Behavior("Health").Lookup("health").Int = 50
	inst.Behavior("Health").Lookup("stats.armor").Float = 3
	inst.RemoveBehavior(inst.Behavior("Links"))
	inst.AddBehavior("Shield", graph.Int("strength", 5))

	records := Compute(inst, inst, tmpl, tmpl)
	for _, r := range records {
		if err := r.Apply(); err != nil {
			t.Fatal(err)
		}
	}
	once := dump(tmpl)
	for _, r := range records {
		if err := r.Apply(); err != nil {
			t.Fatal(err)
		}
	}
	if twice := dump(tmpl); twice != once {
		t.Errorf("second apply changed template:\n%s\nvs\n%s", once, twice)
	}
	if again := Compute(inst, inst, tmpl, tmpl); len(again) != 0 {
		t.Errorf("expected no diffs after apply, got %v", again)
	}
}

func TestBlacklist(t *testing.T) {
	tmpl := graph.New("n")
	tmpl.AddBehavior("Internal",
		graph.Int("m_GameObject", 7),
		graph.Generic("m_Children", graph.String("x", "a")),
		graph.Int("kept", 1))
	inst := tmpl.CloneTree()
	b := inst.Behavior("Internal")
	b.Lookup("m_GameObject").Int = 8
	// a type clash below a blacklisted subtree must not even be visited
	b.Lookup("m_Children").Children[0] = graph.Int("x", 1)

	d, logs := testDiffer()
	if got := d.Compute(inst, inst, tmpl, tmpl); len(got) != 0 {
		t.Errorf("expected no diffs, got %v", got)
	}
	if logs.Len() != 0 {
		t.Errorf("blacklisted subtree was visited: %s", logs)
	}

	extra := NewDiffer(&Options{ExtraBlacklist: []string{"kept"}})
	b.Lookup("kept").Int = 2
	if got := extra.Compute(inst, inst, tmpl, tmpl); len(got) != 0 {
		t.Errorf("expected extra blacklist to hide kept, got %v", got)
	}
	if !extra.Blacklisted("m_PathID") || !extra.Blacklisted("kept") || extra.Blacklisted("health") {
		t.Errorf("unexpected blacklist content")
	}
}

func TestTypeMismatch(t *testing.T) {
	tmpl := graph.New("n")
	tmpl.AddBehavior("Health", graph.Float("health", 100))
	inst := graph.New("n")
	inst.AddBehavior("Health", graph.Int("health", 50))

	d, logs := testDiffer()
	if got := d.Compute(inst, inst, tmpl, tmpl); len(got) != 0 {
		t.Errorf("expected no diffs, got %v", got)
	}
	if !strings.Contains(logs.String(), "property types differ") {
		t.Errorf("expected mismatch to be logged, got %q", logs)
	}
}

func TestMissingTemplateProperty(t *testing.T) {
	tmpl := graph.New("n")
	tmpl.AddBehavior("Health")
	inst := graph.New("n")
	inst.AddBehavior("Health", graph.Int("health", 50), graph.Generic("g", graph.Int("x", 1)))
	if got := Compute(inst, inst, tmpl, tmpl); len(got) != 0 {
		t.Errorf("expected no diffs, got %v", got)
	}
}

func TestCounterpart(t *testing.T) {
	tn := graph.New("t")
	t0 := tn.AddBehavior("T")
	tn.AddBehavior("U")
	t1 := tn.AddBehavior("T")
	t2 := tn.AddBehavior("T")

	in := graph.New("i")
	i0 := in.AddBehavior("T")
	i1 := in.AddBehavior("T")

	tests := []struct {
		tb   *graph.Behavior
		want *graph.Behavior
	}{
		{t0, i0},
		{t1, i1},
		{t2, i0},
	}
	for _, tt := range tests {
		for range 3 {
			if got := Counterpart(tt.tb, in); got != tt.want {
				t.Errorf("Counterpart(%d) = %v, want %v", tt.tb.Index(), got, tt.want)
			}
		}
	}

	single := graph.New("s")
	s0 := single.AddBehavior("T")
	for _, tb := range []*graph.Behavior{t0, t1, t2} {
		if Counterpart(tb, single) != s0 {
			t.Errorf("single instance behavior should pair with every template behavior")
		}
	}
	if Counterpart(tn.Behavior("U"), in) != nil {
		t.Errorf("expected no counterpart")
	}
}

func TestPairingDeterminism(t *testing.T) {
	tmpl := graph.New("n")
	tmpl.AddBehavior("T", graph.Int("v", 0))
	tmpl.AddBehavior("T", graph.Int("v", 0))
	inst := graph.New("n")
	for i := range 3 {
		inst.AddBehavior("T", graph.Int("v", int64(i+1)))
	}

	ids := func() []ID {
		var res []ID
		for _, r := range Compute(inst, inst, tmpl, tmpl) {
			res = append(res, r.ID())
		}
		return res
	}
	first := ids()
	if len(first) != 2 {
		t.Fatalf("expected 2 records, got %v", first)
	}
	its := inst.BehaviorsOfType("T")
	if first[0].Subject != its[0] || first[1].Subject != its[1] {
		t.Errorf("unexpected pairing %v", first)
	}
	for range 5 {
		if got := ids(); !slices.Equal(got, first) {
			t.Fatalf("pairing changed: %v vs %v", got, first)
		}
	}
}
