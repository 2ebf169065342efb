package objdiff

import (
	"fmt"

	"github.com/signadot/prefabdiff/graph"
)

// Kind is the kind of change a Record describes.
type Kind int

const (
	Delete Kind = iota
	Add
	Property
	New
)

var kindNames = []string{
	Delete:   "Delete",
	Add:      "Add",
	Property: "Property",
	New:      "New",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown diff kind %q", s)
}

// ID identifies a Record across recomputations.
type ID struct {
	Kind    Kind
	Subject *graph.Behavior
	Path    string
}

// Record is one atomic, independently applicable change.
type Record struct {
	Kind Kind
	// Subject is the template behavior for Delete, the instance behavior for
	// Add and Property, and nil for New.
	Subject *graph.Behavior
	// Path is the property path for Property and the instance node name for
	// New.
	Path string

	// Target is the template behavior owning the property (Property).
	Target *graph.Behavior
	// Node is the template node (Add) or the instance node (New).
	Node *graph.Node
	// Value is a detached copy of the value to assign (Property).
	Value *graph.Property
	// Old is a detached copy of the template value when computed (Property).
	Old *graph.Property

	InstanceRoot *graph.Node
	TemplateRoot *graph.Node
}

// ID returns the identity of r.
func (r *Record) ID() ID {
	return ID{Kind: r.Kind, Subject: r.Subject, Path: r.Path}
}

// BehaviorType returns the type of the behavior r is about, or "" for New.
func (r *Record) BehaviorType() string {
	if r.Subject == nil {
		return ""
	}
	return r.Subject.Type
}

func (r *Record) String() string {
	return r.Describe().Text
}
