package objdiff

import (
	"github.com/signadot/prefabdiff/graph"
)

// compare compares an instance property with the template property at the
// same path. When they differ it returns the value to assign to the
// template property.
func (d *Differ) compare(ip, tp *graph.Property, instanceRoot, templateRoot *graph.Node) (*graph.Property, bool) {
	switch ip.Type {
	case graph.IntType, graph.BoolType, graph.FloatType, graph.StringType,
		graph.ColorType, graph.EnumType, graph.Vector2Type, graph.Vector3Type,
		graph.RotationType, graph.RectType, graph.BoundsType, graph.CurveType:
		if ip.ValueEqual(tp) {
			return nil, true
		}
		return ip.Clone(), false
	case graph.ReferenceType:
		return d.compareRef(ip, tp, instanceRoot, templateRoot)
	case graph.GenericType:
		return nil, true
	default:
		return nil, true
	}
}

// compareRef compares object references. See the package documentation for
// the policy.
func (d *Differ) compareRef(ip, tp *graph.Property, instanceRoot, templateRoot *graph.Node) (*graph.Property, bool) {
	iref := ip.Ref
	if iref.IsNull() || iref.Kind == graph.AssetRef {
		if tp.Ref.IsNull() && iref.IsNull() {
			return nil, true
		}
		if tp.Ref == iref {
			return nil, true
		}
		return ip.Clone(), false
	}
	target := iref.Target()
	if target == nil {
		d.logger().Warn("reference to a detached behavior", "path", ip.Name)
		return nil, true
	}
	path, ok := graph.PathBetween(target, instanceRoot)
	if !ok {
		return nil, true
	}
	tn := graph.Resolve(templateRoot, path)
	if tn == nil {
		return nil, true
	}
	val := &graph.Property{Name: ip.Name, Type: graph.ReferenceType}
	switch iref.Kind {
	case graph.NodeRef:
		val.Ref = graph.RefTo(tn)
		if tp.Ref.Kind != graph.NodeRef {
			return val, false
		}
	case graph.BehaviorRef:
		val.Ref = graph.RefToBehavior(tn.Behavior(iref.Behavior.Type))
		if tp.Ref.Kind != graph.BehaviorRef {
			return val, false
		}
	}
	tpath, ok := graph.PathBetween(tp.Ref.Target(), templateRoot)
	if ok && tpath == path {
		return nil, true
	}
	return val, false
}

// retarget maps a reference copied from the instance graph into the template
// graph. References into the instance subtree are re-pointed at their
// template equivalents; references to live objects that cannot be mapped
// become null, since a template cannot reference them.
func retarget(ref graph.Ref, instanceRoot, templateRoot *graph.Node) graph.Ref {
	if ref.IsNull() || ref.Kind == graph.AssetRef {
		return ref
	}
	target := ref.Target()
	if target == nil || target.Graph() == templateRoot.Graph() {
		return ref
	}
	path, ok := graph.PathBetween(target, instanceRoot)
	if !ok {
		return graph.Ref{}
	}
	tn := graph.Resolve(templateRoot, path)
	if tn == nil {
		return graph.Ref{}
	}
	if ref.Kind == graph.BehaviorRef {
		return graph.RefToBehavior(tn.Behavior(ref.Behavior.Type))
	}
	return graph.RefTo(tn)
}

func retargetBehavior(b *graph.Behavior, instanceRoot, templateRoot *graph.Node) {
	b.Walk(func(_ string, p *graph.Property) bool {
		if p.Type == graph.ReferenceType {
			p.Ref = retarget(p.Ref, instanceRoot, templateRoot)
		}
		return true
	})
}
