package graph

import "slices"

const noParent = -1

// Graph is an arena of nodes. The node with id 0 is the root.
type Graph struct {
	nodes []*Node

	editing  int
	revision int
}

// Node is a vertex in a Graph.
type Node struct {
	Name string

	g         *Graph
	id        int
	parent    int
	children  []int
	behaviors []*Behavior
}

// New creates a graph and returns its root node.
func New(name string) *Node {
	g := &Graph{}
	return g.newNode(name, noParent)
}

func (g *Graph) newNode(name string, parent int) *Node {
	n := &Node{
		Name:   name,
		g:      g,
		id:     len(g.nodes),
		parent: parent,
	}
	g.nodes = append(g.nodes, n)
	if parent != noParent {
		p := g.nodes[parent]
		p.children = append(p.children, n.id)
	}
	return n
}

// Root returns the root node of g.
func (g *Graph) Root() *Node {
	if len(g.nodes) == 0 {
		return nil
	}
	return g.nodes[0]
}

// Len returns the number of nodes in g.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Revision returns the number of completed edits on g.
func (g *Graph) Revision() int {
	return g.revision
}

// Edit runs fn as one logical edit. Nested calls join the outermost edit,
// so the revision is bumped once per outermost call.
func (g *Graph) Edit(fn func()) {
	g.editing++
	defer func() {
		g.editing--
		if g.editing == 0 {
			g.revision++
		}
	}()
	fn()
}

// ReplaceWith replaces the content of g with the content of scratch, which
// must be a different graph. The root node of g keeps its identity; every
// other node of g is dropped. scratch is empty afterwards.
//
// Dropped nodes are detached: they have no graph, parent or children, and
// their behaviors, like the former behaviors of the root, have no node.
func (g *Graph) ReplaceWith(scratch *Graph) {
	if scratch == g || len(scratch.nodes) == 0 {
		return
	}
	oldRoot := g.Root()
	newRoot := scratch.nodes[0]
	nodes := scratch.nodes
	for _, n := range nodes {
		n.g = g
	}
	if oldRoot == nil {
		g.nodes = nodes
		scratch.nodes = nil
		return
	}
	dropped := g.nodes[1:]
	oldBehaviors := oldRoot.behaviors
	oldRoot.Name = newRoot.Name
	oldRoot.children = newRoot.children
	oldRoot.behaviors = newRoot.behaviors
	oldRoot.parent = noParent
	for _, b := range oldRoot.behaviors {
		b.owner = oldRoot
	}
	nodes[0] = oldRoot
	g.nodes = nodes
	scratch.nodes = nil
	newRoot.g = nil
	newRoot.children = nil
	newRoot.behaviors = nil
	for _, b := range oldBehaviors {
		b.owner = nil
	}
	for _, n := range dropped {
		n.detach()
	}

	for _, n := range g.nodes {
		for _, b := range n.behaviors {
			b.Walk(func(_ string, p *Property) bool {
				if p.Type == ReferenceType && p.Ref.Node == newRoot {
					p.Ref.Node = oldRoot
				}
				return true
			})
		}
	}
}

func (n *Node) detach() {
	n.g = nil
	n.parent = noParent
	n.children = nil
	for _, b := range n.behaviors {
		b.owner = nil
	}
}

// Graph returns the graph owning n, or nil if n was dropped by
// Graph.ReplaceWith.
func (n *Node) Graph() *Graph {
	return n.g
}

// ID returns the arena index of n.
func (n *Node) ID() int {
	return n.id
}

// Parent returns the parent of n, or nil for a root.
func (n *Node) Parent() *Node {
	if n == nil || n.parent == noParent {
		return nil
	}
	return n.g.nodes[n.parent]
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// Children returns the children of n in order.
func (n *Node) Children() []*Node {
	res := make([]*Node, len(n.children))
	for i, id := range n.children {
		res[i] = n.g.nodes[id]
	}
	return res
}

// Child returns the first child of n named name.
func (n *Node) Child(name string) *Node {
	for _, id := range n.children {
		c := n.g.nodes[id]
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddChild appends a new child named name to n. It returns nil if n is
// detached.
func (n *Node) AddChild(name string) *Node {
	if n.g == nil {
		return nil
	}
	return n.g.newNode(name, n.id)
}

// Path returns the path of n from the root of its graph.
func (n *Node) Path() string {
	p, _ := PathBetween(n, n.Root())
	return p
}

// Behaviors returns the behaviors attached to n in attachment order.
func (n *Node) Behaviors() []*Behavior {
	return slices.Clone(n.behaviors)
}

// BehaviorsOfType returns the behaviors of type typ attached to n in
// attachment order.
func (n *Node) BehaviorsOfType(typ string) []*Behavior {
	var res []*Behavior
	for _, b := range n.behaviors {
		if b.Type == typ {
			res = append(res, b)
		}
	}
	return res
}

// Behavior returns the first behavior of type typ attached to n.
func (n *Node) Behavior(typ string) *Behavior {
	for _, b := range n.behaviors {
		if b.Type == typ {
			return b
		}
	}
	return nil
}

// HasBehavior reports whether n has a behavior of type typ.
func (n *Node) HasBehavior(typ string) bool {
	return n.Behavior(typ) != nil
}

// AddBehavior attaches a new, empty behavior of type typ to n.
func (n *Node) AddBehavior(typ string, props ...*Property) *Behavior {
	b := &Behavior{Type: typ, Properties: props, owner: n}
	n.behaviors = append(n.behaviors, b)
	return b
}

// RemoveBehavior detaches b from n. It reports whether b was attached.
func (n *Node) RemoveBehavior(b *Behavior) bool {
	i := slices.Index(n.behaviors, b)
	if i < 0 {
		return false
	}
	n.behaviors = slices.Delete(n.behaviors, i, i+1)
	b.owner = nil
	return true
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}
