package store

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/objdiff"

	jsonpatch "github.com/evanphx/json-patch"
)

func TestJSONPatchMatchesApply(t *testing.T) {
	tmpl := testTree()
	inst := tmpl.CloneTree()
	h := inst.Behavior("Health")
	h.Lookup("health").Int = 50
	h.Lookup("stats.inner.depth").Int = 3
	h.Lookup("weapon").Ref = graph.RefTo(inst)
	h.Lookup("none").Ref = graph.RefToAsset("Materials/Blue")
	inst.RemoveBehavior(inst.Behavior(graph.TransformType))
	inst.AddBehavior("Shield", graph.Int("strength", 5), graph.RefProp("holder", graph.RefTo(graph.Resolve(inst, "Weapon"))))
	inst.AddBehavior("AudioSource", graph.String("clip", "step"))
	inst.AddBehavior("AudioSource", graph.String("clip", "jump"))
	pet := inst.AddChild("Pet")
	pet.AddBehavior(graph.TransformType, graph.Vector3Prop("m_LocalPosition", graph.Vector3{X: 1}))
	pet.AddBehavior("Follow", graph.RefProp("target", graph.RefTo(inst)))

	records := objdiff.Compute(inst, inst, tmpl, tmpl)
	records = append(records, objdiff.Compute(pet, inst, graph.Resolve(tmpl, "Pet"), tmpl)...)
	if len(records) != 9 {
		t.Fatalf("expected 9 records, got %d: %v", len(records), records)
	}

	patch, err := JSONPatch(records, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jsonpatch.DecodePatch(patch); err != nil {
		t.Fatalf("invalid patch %s: %v", patch, err)
	}
	patched, err := ApplyJSONPatch(tmpl, patch)
	if err != nil {
		t.Fatalf("apply %s: %v", patch, err)
	}

	// New records replace the template content, so they go last.
	for _, r := range records {
		if err := r.Apply(); err != nil {
			t.Fatal(err)
		}
	}
	want, err := Marshal(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Marshal(patched)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("patched document differs from applied template (-want +got):\n%s\npatch: %s", diff, patch)
	}
}

func TestJSONPatchAddFillsExistingSlot(t *testing.T) {
	tmpl := graph.New("Root")
	tmpl.AddBehavior("Legacy")
	inst := graph.New("Root")
	inst.AddBehavior("Legacy")
	inst.AddBehavior("AudioSource", graph.String("clip", "step"))
	inst.AddBehavior("AudioSource", graph.String("clip", "jump"))
	records := objdiff.Compute(inst, inst, tmpl, tmpl)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %v", records)
	}

	// once applied, the same records refill the slots they created
	for _, r := range records {
		if err := r.Apply(); err != nil {
			t.Fatal(err)
		}
	}
	tmpl.BehaviorsOfType("AudioSource")[1].Lookup("clip").String = "edited"
	patch, err := JSONPatch(records, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(patch), `"/behaviors/-"`) {
		t.Errorf("patch %s appends behaviors already in the template", patch)
	}
	patched, err := ApplyJSONPatch(tmpl, patch)
	if err != nil {
		t.Fatalf("apply %s: %v", patch, err)
	}
	if got := dumpTypes(patched); got != "Legacy,AudioSource,AudioSource" {
		t.Errorf("behaviors = %s", got)
	}
	if got := patched.BehaviorsOfType("AudioSource")[1].Lookup("clip").String; got != "jump" {
		t.Errorf("clip = %q, want jump", got)
	}
}

func TestJSONPatchEmptyLists(t *testing.T) {
	tmpl := graph.New("Root")
	inst := graph.New("Root")
	inst.AddBehavior("A", graph.Int("x", 1))
	inst.AddBehavior("B")
	child := inst.AddChild("Child")

	records := objdiff.Compute(inst, inst, tmpl, tmpl)
	records = append(records, objdiff.Compute(child, inst, nil, tmpl)...)
	patch, err := JSONPatch(records, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"/behaviors"`, `"/behaviors/-"`, `"/children"`} {
		if !strings.Contains(string(patch), want) {
			t.Errorf("patch %s lacks path %s", patch, want)
		}
	}
	patched, err := ApplyJSONPatch(tmpl, patch)
	if err != nil {
		t.Fatal(err)
	}
	if patched.Behavior("A") == nil || patched.Behavior("B") == nil || graph.Resolve(patched, "Child") == nil {
		t.Errorf("unexpected patched tree %s", dumpTypes(patched))
	}
	if tmpl.HasBehavior("A") {
		t.Errorf("ApplyJSONPatch modified its input")
	}
}

func TestJSONPatchDeletes(t *testing.T) {
	tmpl := graph.New("Root")
	tmpl.AddBehavior("A")
	tmpl.AddBehavior("B")
	tmpl.AddBehavior("C")
	inst := graph.New("Root")
	inst.AddBehavior("B")

	records := objdiff.Compute(inst, inst, tmpl, tmpl)
	patch, err := JSONPatch(records, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	i2 := strings.Index(string(patch), `"/behaviors/2"`)
	i0 := strings.Index(string(patch), `"/behaviors/0"`)
	if i2 < 0 || i0 < 0 || i2 > i0 {
		t.Errorf("expected removals from the end, got %s", patch)
	}
	patched, err := ApplyJSONPatch(tmpl, patch)
	if err != nil {
		t.Fatal(err)
	}
	if got := dumpTypes(patched); got != "B" {
		t.Errorf("got behaviors %q", got)
	}
}

func dumpTypes(n *graph.Node) string {
	var types []string
	for _, b := range n.Behaviors() {
		types = append(types, b.Type)
	}
	return strings.Join(types, ",")
}
