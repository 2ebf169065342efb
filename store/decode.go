package store

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/signadot/prefabdiff/graph"
)

type pendingRef struct {
	prop     *graph.Property
	node     string
	behavior string
	index    int
}

// decoder builds a graph from a document. References are collected while
// building and resolved by finish.
type decoder struct {
	log  *slog.Logger
	refs []pendingRef
}

func (d *decoder) build(doc *nodeDoc) (*graph.Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrBadDocument)
	}
	root := graph.New(doc.Name)
	if err := d.fill(root, doc); err != nil {
		return nil, err
	}
	d.finish(root)
	return root, nil
}

func (d *decoder) fill(n *graph.Node, doc *nodeDoc) error {
	if doc.Name == "" {
		return fmt.Errorf("%w: node without a name below %q", ErrBadDocument, n.Path())
	}
	for _, bd := range doc.Behaviors {
		if bd == nil || bd.Type == "" {
			return fmt.Errorf("%w: %s: behavior without a type", ErrBadDocument, n.Name)
		}
		props, err := d.properties(bd.Properties)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", n.Name, bd.Type, err)
		}
		n.AddBehavior(bd.Type, props...)
	}
	for _, cd := range doc.Children {
		if cd == nil {
			return fmt.Errorf("%w: %s: empty child", ErrBadDocument, n.Name)
		}
		if err := d.fill(n.AddChild(cd.Name), cd); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) properties(docs []*propertyDoc) ([]*graph.Property, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	res := make([]*graph.Property, 0, len(docs))
	for _, pd := range docs {
		p, err := d.property(pd)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

func (d *decoder) property(pd *propertyDoc) (*graph.Property, error) {
	if pd == nil || pd.Name == "" {
		return nil, fmt.Errorf("%w: property without a name", ErrBadDocument)
	}
	typ, err := graph.ParseType(pd.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadDocument, pd.Name, err)
	}
	p := &graph.Property{Name: pd.Name, Type: typ}
	if typ == graph.GenericType {
		p.Children, err = d.properties(pd.Children)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pd.Name, err)
		}
		return p, nil
	}
	if err := d.value(p, pd.Value); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadDocument, pd.Name, err)
	}
	return p, nil
}

func (d *decoder) value(p *graph.Property, v any) error {
	var err error
	switch p.Type {
	case graph.IntType:
		p.Int, err = integer(v)
	case graph.BoolType:
		b, ok := v.(bool)
		if !ok && v != nil {
			return fmt.Errorf("expected a bool, got %T", v)
		}
		p.Bool = b
	case graph.FloatType:
		p.Float, err = number(v)
	case graph.StringType:
		s, ok := v.(string)
		if !ok && v != nil {
			return fmt.Errorf("expected a string, got %T", v)
		}
		p.String = s
	case graph.ColorType:
		var f []float64
		if f, err = numbers(v, 4); err == nil {
			p.Color = graph.Color{R: f[0], G: f[1], B: f[2], A: f[3]}
		}
	case graph.EnumType:
		p.Enum, err = enum(v)
	case graph.Vector2Type:
		var f []float64
		if f, err = numbers(v, 2); err == nil {
			p.Vector2 = graph.Vector2{X: f[0], Y: f[1]}
		}
	case graph.Vector3Type:
		p.Vector3, err = vector3(v)
	case graph.RotationType:
		var f []float64
		if f, err = numbers(v, 4); err == nil {
			p.Rotation = graph.Quaternion{X: f[0], Y: f[1], Z: f[2], W: f[3]}
		}
	case graph.RectType:
		var f []float64
		if f, err = numbers(v, 4); err == nil {
			p.Rect = graph.Rect{X: f[0], Y: f[1], Width: f[2], Height: f[3]}
		}
	case graph.BoundsType:
		p.Bounds, err = bounds(v)
	case graph.CurveType:
		p.Curve, err = curve(v)
	case graph.ReferenceType:
		err = d.ref(p, v)
	}
	return err
}

func (d *decoder) ref(p *graph.Property, v any) error {
	if v == nil {
		return nil
	}
	m, err := mapping(v)
	if err != nil {
		return err
	}
	if a, ok := m["asset"]; ok {
		s, ok := a.(string)
		if !ok {
			return fmt.Errorf("expected an asset location, got %T", a)
		}
		p.Ref = graph.RefToAsset(s)
		return nil
	}
	pr := pendingRef{prop: p}
	if n, ok := m["node"]; ok && n != nil {
		if pr.node, ok = n.(string); !ok {
			return fmt.Errorf("expected a node path, got %T", n)
		}
	}
	if b, ok := m["behavior"]; ok && b != nil {
		if pr.behavior, ok = b.(string); !ok {
			return fmt.Errorf("expected a behavior type, got %T", b)
		}
	}
	if i, ok := m["index"]; ok {
		idx, err := integer(i)
		if err != nil {
			return err
		}
		pr.index = int(idx)
	}
	d.refs = append(d.refs, pr)
	return nil
}

// finish resolves the references collected while building root. Unresolvable
// references are left null.
func (d *decoder) finish(root *graph.Node) {
	for _, pr := range d.refs {
		n := graph.Resolve(root, pr.node)
		if n == nil {
			d.log.Warn("unresolved reference", "property", pr.prop.Name, "node", pr.node, "err", graph.ErrNotFound)
			continue
		}
		if pr.behavior == "" {
			pr.prop.Ref = graph.RefTo(n)
			continue
		}
		bs := n.BehaviorsOfType(pr.behavior)
		if pr.index < 0 || pr.index >= len(bs) {
			d.log.Warn("unresolved reference", "property", pr.prop.Name, "node", pr.node,
				"behavior", pr.behavior, "index", pr.index, "err", graph.ErrNotFound)
			continue
		}
		pr.prop.Ref = graph.RefToBehavior(bs[pr.index])
	}
	d.refs = nil
}

func number(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func integer(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", x)
		}
		return int64(x), nil
	}
	f, err := number(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected an integer, got %g", f)
	}
	return int64(f), nil
}

func numbers(v any, n int) ([]float64, error) {
	if v == nil {
		return make([]float64, n), nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of %d numbers, got %T", n, v)
	}
	if len(l) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(l))
	}
	res := make([]float64, n)
	for i, x := range l {
		f, err := number(x)
		if err != nil {
			return nil, err
		}
		res[i] = f
	}
	return res, nil
}

func vector3(v any) (graph.Vector3, error) {
	f, err := numbers(v, 3)
	if err != nil {
		return graph.Vector3{}, err
	}
	return graph.Vector3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func mapping(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	case map[any]any:
		res := make(map[string]any, len(m))
		for k, x := range m {
			s, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("expected string keys, got %T", k)
			}
			res[s] = x
		}
		return res, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %T", v)
}

func enum(v any) (graph.Enum, error) {
	m, err := mapping(v)
	if err != nil {
		return graph.Enum{}, err
	}
	i, err := integer(m["index"])
	if err != nil {
		return graph.Enum{}, err
	}
	e := graph.Enum{Index: int(i)}
	if names, ok := m["names"]; ok && names != nil {
		l, ok := names.([]any)
		if !ok {
			return graph.Enum{}, fmt.Errorf("expected a list of names, got %T", names)
		}
		for _, x := range l {
			s, ok := x.(string)
			if !ok {
				return graph.Enum{}, fmt.Errorf("expected a name, got %T", x)
			}
			e.Names = append(e.Names, s)
		}
	}
	return e, nil
}

func bounds(v any) (graph.Bounds, error) {
	m, err := mapping(v)
	if err != nil {
		return graph.Bounds{}, err
	}
	c, err := vector3(m["center"])
	if err != nil {
		return graph.Bounds{}, err
	}
	e, err := vector3(m["extents"])
	if err != nil {
		return graph.Bounds{}, err
	}
	return graph.Bounds{Center: c, Extents: e}, nil
}

func curve(v any) (graph.Curve, error) {
	m, err := mapping(v)
	if err != nil {
		return graph.Curve{}, err
	}
	var c graph.Curve
	if c.PreWrap, err = wrapMode(m["preWrap"]); err != nil {
		return c, err
	}
	if c.PostWrap, err = wrapMode(m["postWrap"]); err != nil {
		return c, err
	}
	keys, ok := m["keys"]
	if !ok || keys == nil {
		return c, nil
	}
	l, ok := keys.([]any)
	if !ok {
		return c, fmt.Errorf("expected a list of keyframes, got %T", keys)
	}
	for _, k := range l {
		f, err := numbers(k, 4)
		if err != nil {
			return c, fmt.Errorf("keyframe: %w", err)
		}
		c.Keys = append(c.Keys, graph.Keyframe{Time: f[0], Value: f[1], InTangent: f[2], OutTangent: f[3]})
	}
	return c, nil
}

func wrapMode(v any) (graph.WrapMode, error) {
	if v == nil {
		return graph.WrapDefault, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("expected a wrap mode, got %T", v)
	}
	i := slices.Index(wrapNames, s)
	if i < 0 {
		return 0, fmt.Errorf("unknown wrap mode %q", s)
	}
	return graph.WrapMode(i), nil
}
