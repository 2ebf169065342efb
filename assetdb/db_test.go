package assetdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/store"
)

func writeTemplate(t *testing.T, dir, loc string, root *graph.Node) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(loc))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	d, err := store.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, d, 0o644); err != nil {
		t.Fatal(err)
	}
}

func player(health int64) *graph.Node {
	root := graph.New("Player")
	root.AddBehavior("Health", graph.Int("health", health))
	root.AddChild("Weapon")
	return root
}

func testDB(t *testing.T) (*DB, string) {
	t.Helper()
	dir := t.TempDir()
	writeTemplate(t, dir, "Player.yaml", player(100))
	writeTemplate(t, dir, "Characters/Player.yml", player(80))
	writeTemplate(t, dir, "Characters/Enemy.yaml", graph.New("Enemy"))
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a template"), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := Open(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	return db, dir
}

func TestLookup(t *testing.T) {
	db, _ := testDB(t)
	tests := []struct {
		name string
		want []string
	}{
		{"Player", []string{"Characters/Player.yml", "Player.yaml"}},
		{"Enemy", []string{"Characters/Enemy.yaml"}},
		{"README", nil},
		{"Nobody", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, db.Lookup(tt.name)); diff != "" {
			t.Errorf("Lookup(%q) mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
	if got := len(db.Locations()); got != 3 {
		t.Errorf("expected 3 locations, got %d", got)
	}
}

func TestLoadCaches(t *testing.T) {
	db, _ := testDB(t)
	a, err := db.Load("Player.yaml")
	if err != nil {
		t.Fatal(err)
	}
	b, err := db.Load("Player.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("Load returned different graphs for the same location")
	}
	if got := a.Behavior("Health").Lookup("health").Int; got != 100 {
		t.Errorf("health = %d", got)
	}
	if loc, ok := db.Location(graph.Resolve(a, "Weapon")); !ok || loc != "Player.yaml" {
		t.Errorf("Location = %q, %v", loc, ok)
	}
	if _, err := db.Load("Missing.yaml"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestRefreshCountHeuristic(t *testing.T) {
	db, dir := testDB(t)

	// a rename keeps the count: not detected by Refresh
	if err := os.Rename(filepath.Join(dir, "Player.yaml"), filepath.Join(dir, "Hero.yaml")); err != nil {
		t.Fatal(err)
	}
	if err := db.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := db.Lookup("Hero"); len(got) != 0 {
		t.Errorf("Refresh detected a rename: %v", got)
	}
	if err := db.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Hero.yaml"}, db.Lookup("Hero")); diff != "" {
		t.Errorf("Rebuild mismatch (-want +got):\n%s", diff)
	}

	writeTemplate(t, dir, "Boss.yaml", graph.New("Boss"))
	if err := db.Refresh(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Boss.yaml"}, db.Lookup("Boss")); diff != "" {
		t.Errorf("Refresh mismatch (-want +got):\n%s", diff)
	}
}

func TestCommit(t *testing.T) {
	db, dir := testDB(t)
	root, err := db.Load("Characters/Player.yml")
	if err != nil {
		t.Fatal(err)
	}
	if db.Dirty() {
		t.Fatalf("fresh db is dirty")
	}
	root.Graph().Edit(func() {
		root.Behavior("Health").Lookup("health").Int = 5
	})
	db.MarkDirty(root)
	if !db.Dirty() {
		t.Fatalf("expected dirty db")
	}
	if err := db.Commit(); err != nil {
		t.Fatal(err)
	}
	if db.Dirty() {
		t.Errorf("db still dirty after commit")
	}

	f, err := os.Open(filepath.Join(dir, "Characters", "Player.yml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	back, err := store.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := back.Behavior("Health").Lookup("health").Int; got != 5 {
		t.Errorf("committed health = %d", got)
	}
	if err := db.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if got := len(db.Locations()); got != 3 {
		t.Errorf("commit left stray files: %v", db.Locations())
	}
}

func TestMarkDirtyUnknownGraph(t *testing.T) {
	db, _ := testDB(t)
	db.MarkDirty(graph.New("Stray"))
	if db.Dirty() {
		t.Errorf("unknown graph marked dirty")
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Errorf("expected error for missing dir")
	}
	f := filepath.Join(t.TempDir(), "file.yaml")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(f, nil); err == nil {
		t.Errorf("expected error for a file")
	}
}

func TestBareName(t *testing.T) {
	tests := map[string]string{
		"Player.yaml":            "Player",
		"Characters/Enemy.yml":   "Enemy",
		"Props/Crate.Large.yaml": "Crate.Large",
	}
	for loc, want := range tests {
		if got := BareName(loc); got != want {
			t.Errorf("BareName(%q) = %q, want %q", loc, got, want)
		}
	}
}
