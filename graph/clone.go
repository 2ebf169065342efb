package graph

// CloneTree copies the subtree rooted at n into a new graph and returns the
// copy of n, which is the root of that graph. References to nodes or
// behaviors inside the subtree are re-pointed at their copies; other
// references are copied verbatim.
func (n *Node) CloneTree() *Node {
	c := &cloner{
		nodes:     map[*Node]*Node{},
		behaviors: map[*Behavior]*Behavior{},
	}
	root := New(n.Name)
	c.copyNode(n, root)
	for _, dst := range c.nodes {
		for _, b := range dst.behaviors {
			b.Walk(func(_ string, p *Property) bool {
				if p.Type == ReferenceType {
					p.Ref = c.remap(p.Ref)
				}
				return true
			})
		}
	}
	return root
}

type cloner struct {
	nodes     map[*Node]*Node
	behaviors map[*Behavior]*Behavior
}

func (c *cloner) copyNode(src, dst *Node) {
	c.nodes[src] = dst
	for _, b := range src.behaviors {
		db := dst.AddBehavior(b.Type)
		db.CopyFrom(b)
		c.behaviors[b] = db
	}
	for _, child := range src.Children() {
		c.copyNode(child, dst.AddChild(child.Name))
	}
}

func (c *cloner) remap(r Ref) Ref {
	switch r.Kind {
	case NodeRef:
		if m, ok := c.nodes[r.Node]; ok {
			r.Node = m
		}
	case BehaviorRef:
		if m, ok := c.behaviors[r.Behavior]; ok {
			r.Behavior = m
		}
	}
	return r
}
