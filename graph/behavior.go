package graph

import "strings"

// PathSeparator separates property names in a property path.
const PathSeparator = "."

// TransformType is the type of the structural behavior holding a node's
// placement (position, rotation, scale).
const TransformType = "Transform"

// Behavior is a typed bundle of properties attached to a Node.
type Behavior struct {
	Type       string
	Properties []*Property

	owner *Node
}

// Node returns the node b is attached to, or nil once b has been removed.
func (b *Behavior) Node() *Node {
	if b == nil {
		return nil
	}
	return b.owner
}

// Index returns the position of b among the behaviors of the same type on
// its node, or -1 if b is detached.
func (b *Behavior) Index() int {
	if b.owner == nil {
		return -1
	}
	i := 0
	for _, o := range b.owner.behaviors {
		if o == b {
			return i
		}
		if o.Type == b.Type {
			i++
		}
	}
	return -1
}

// Lookup returns the property at path, or nil.
func (b *Behavior) Lookup(path string) *Property {
	if path == "" {
		return nil
	}
	props := b.Properties
	var res *Property
	for _, name := range strings.Split(path, PathSeparator) {
		res = nil
		for _, p := range props {
			if p.Name == name {
				res = p
				break
			}
		}
		if res == nil {
			return nil
		}
		props = res.Children
	}
	return res
}

// Walk visits the properties of b depth first in document order. fn is
// called with the property path; when it returns false the children of that
// property are not visited.
func (b *Behavior) Walk(fn func(path string, p *Property) bool) {
	walkProps(b.Properties, "", fn)
}

func walkProps(props []*Property, prefix string, fn func(string, *Property) bool) {
	for _, p := range props {
		path := p.Name
		if prefix != "" {
			path = prefix + PathSeparator + p.Name
		}
		if !fn(path, p) {
			continue
		}
		if len(p.Children) != 0 {
			walkProps(p.Children, path, fn)
		}
	}
}

// CopyFrom replaces the properties of b with deep copies of the properties
// of src. References are copied verbatim.
func (b *Behavior) CopyFrom(src *Behavior) {
	b.Properties = cloneProps(src.Properties)
}

func (b *Behavior) String() string {
	if b == nil {
		return "<nil>"
	}
	if b.owner == nil {
		return b.Type
	}
	return b.owner.Name + ":" + b.Type
}
