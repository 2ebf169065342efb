package objdiff

import (
	"errors"
	"fmt"

	"github.com/signadot/prefabdiff/debug"
	"github.com/signadot/prefabdiff/graph"
)

var (
	// ErrDetached is returned when the template object a record applies to
	// is no longer part of the template graph.
	ErrDetached = errors.New("apply target is detached")
	// ErrNoParent is returned when a New record finds no place for the node
	// in the template.
	ErrNoParent = errors.New("no parent location in template")
)

// Apply applies r to the template graph. Applying a record twice leaves the
// template as applying it once. A returned error means the record had no
// effect; it never leaves the template partially modified.
func (r *Record) Apply() error {
	if debug.Apply() {
		debug.Logf("apply %s %s %q\n", r.Kind, r.Subject, r.Path)
	}
	switch r.Kind {
	case Delete:
		return r.applyDelete()
	case Add:
		return r.applyAdd()
	case Property:
		return r.applyProperty()
	case New:
		return r.applyNew()
	}
	return fmt.Errorf("unknown diff kind %s", r.Kind)
}

func (r *Record) applyDelete() error {
	n := r.Subject.Node()
	if n == nil {
		return nil
	}
	n.Graph().Edit(func() {
		n.RemoveBehavior(r.Subject)
	})
	return nil
}

// applyAdd fills the template behavior at the occurrence index of the
// instance behavior, adding it when the template has fewer behaviors of that
// type, so that each Add owns one template behavior and reapplying it
// overwrites that one. Adds of one type apply in ascending index order, the
// order Compute emits them in.
func (r *Record) applyAdd() error {
	if r.Node == nil || r.Node.Graph() == nil || r.Subject == nil {
		return ErrDetached
	}
	i := r.Subject.Index()
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrDetached, r.Subject.Type)
	}
	r.Node.Graph().Edit(func() {
		var tb *graph.Behavior
		if same := r.Node.BehaviorsOfType(r.Subject.Type); i < len(same) {
			tb = same[i]
		} else {
			tb = r.Node.AddBehavior(r.Subject.Type)
		}
		tb.CopyFrom(r.Subject)
		if r.InstanceRoot != nil && r.TemplateRoot != nil {
			retargetBehavior(tb, r.InstanceRoot, r.TemplateRoot)
		}
	})
	return nil
}

func (r *Record) applyProperty() error {
	n := r.Target.Node()
	if n == nil {
		return fmt.Errorf("%w: %s", ErrDetached, r.Target.Type)
	}
	tp := r.Target.Lookup(r.Path)
	if tp == nil {
		return fmt.Errorf("%w: %s.%s", ErrDetached, r.Target.Type, r.Path)
	}
	if tp.Type != r.Value.Type {
		return fmt.Errorf("%s.%s: cannot assign %s to %s", r.Target.Type, r.Path, r.Value.Type, tp.Type)
	}
	n.Graph().Edit(func() {
		tp.Assign(r.Value)
	})
	return nil
}

// applyNew instantiates a scratch copy of the template, adds the instance
// node to it under the equivalent parent and commits the copy as the
// template.
func (r *Record) applyNew() error {
	if r.Node == nil || r.TemplateRoot == nil {
		return ErrDetached
	}
	path, ok := graph.PathBetween(r.Node, r.InstanceRoot)
	if !ok || path == "" {
		return fmt.Errorf("%w: %s is not below the instance root", ErrNoParent, r.Node)
	}
	if r.TemplateRoot.Parent() != nil {
		return fmt.Errorf("%w: template root %s is not the root of its graph", ErrNoParent, r.TemplateRoot)
	}
	parentPath := graph.ParentPath(path)
	existing := graph.Resolve(r.TemplateRoot, parentPath)
	if existing == nil {
		return fmt.Errorf("%w: %q", ErrNoParent, parentPath)
	}
	if existing.Child(r.Node.Name) != nil {
		return nil
	}
	scratch := r.TemplateRoot.CloneTree()
	parent := graph.Resolve(scratch, parentPath)
	child := parent.AddChild(r.Node.Name)
	for _, b := range r.Node.Behaviors() {
		if b.Type == graph.TransformType {
			continue
		}
		cb := child.AddBehavior(b.Type)
		cb.CopyFrom(b)
		retargetBehavior(cb, r.InstanceRoot, scratch)
	}
	if t := r.Node.Behavior(graph.TransformType); t != nil {
		ct := child.AddBehavior(graph.TransformType)
		ct.CopyFrom(t)
		retargetBehavior(ct, r.InstanceRoot, scratch)
	}
	g := r.TemplateRoot.Graph()
	g.Edit(func() {
		g.ReplaceWith(scratch.Graph())
	})
	return nil
}
