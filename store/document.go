package store

import (
	"log/slog"
	"slices"

	"github.com/signadot/prefabdiff/graph"
)

type nodeDoc struct {
	Name      string         `yaml:"name"`
	Behaviors []*behaviorDoc `yaml:"behaviors,omitempty"`
	Children  []*nodeDoc     `yaml:"children,omitempty"`
}

type behaviorDoc struct {
	Type       string         `yaml:"type"`
	Properties []*propertyDoc `yaml:"properties,omitempty"`
}

type propertyDoc struct {
	Name     string         `yaml:"name"`
	Kind     string         `yaml:"kind"`
	Value    any            `yaml:"value,omitempty"`
	Children []*propertyDoc `yaml:"children,omitempty"`
}

var wrapNames = []string{
	graph.WrapDefault:  "default",
	graph.WrapOnce:     "once",
	graph.WrapLoop:     "loop",
	graph.WrapPingPong: "pingpong",
	graph.WrapClamp:    "clamp",
}

// encoder turns graph objects into documents. References are written
// relative to root.
type encoder struct {
	root *graph.Node
	log  *slog.Logger
}

func (e *encoder) node(n *graph.Node) *nodeDoc {
	d := &nodeDoc{Name: n.Name}
	for _, b := range n.Behaviors() {
		d.Behaviors = append(d.Behaviors, e.behavior(b))
	}
	for _, c := range n.Children() {
		d.Children = append(d.Children, e.node(c))
	}
	return d
}

func (e *encoder) behavior(b *graph.Behavior) *behaviorDoc {
	return &behaviorDoc{Type: b.Type, Properties: e.properties(b.Properties)}
}

func (e *encoder) properties(ps []*graph.Property) []*propertyDoc {
	if len(ps) == 0 {
		return nil
	}
	res := make([]*propertyDoc, len(ps))
	for i, p := range ps {
		res[i] = e.property(p)
	}
	return res
}

func (e *encoder) property(p *graph.Property) *propertyDoc {
	d := &propertyDoc{Name: p.Name, Kind: p.Type.String()}
	if p.Type == graph.GenericType {
		d.Children = e.properties(p.Children)
		return d
	}
	d.Value = e.value(p)
	return d
}

func (e *encoder) value(p *graph.Property) any {
	switch p.Type {
	case graph.IntType:
		return p.Int
	case graph.BoolType:
		return p.Bool
	case graph.FloatType:
		return p.Float
	case graph.StringType:
		return p.String
	case graph.ColorType:
		c := p.Color
		return []float64{c.R, c.G, c.B, c.A}
	case graph.EnumType:
		m := map[string]any{"index": p.Enum.Index}
		if len(p.Enum.Names) != 0 {
			m["names"] = slices.Clone(p.Enum.Names)
		}
		return m
	case graph.Vector2Type:
		return []float64{p.Vector2.X, p.Vector2.Y}
	case graph.Vector3Type:
		return vec3(p.Vector3)
	case graph.RotationType:
		q := p.Rotation
		return []float64{q.X, q.Y, q.Z, q.W}
	case graph.RectType:
		r := p.Rect
		return []float64{r.X, r.Y, r.Width, r.Height}
	case graph.BoundsType:
		return map[string]any{
			"center":  vec3(p.Bounds.Center),
			"extents": vec3(p.Bounds.Extents),
		}
	case graph.CurveType:
		keys := make([][]float64, len(p.Curve.Keys))
		for i, k := range p.Curve.Keys {
			keys[i] = []float64{k.Time, k.Value, k.InTangent, k.OutTangent}
		}
		return map[string]any{
			"keys":     keys,
			"preWrap":  wrapName(p.Curve.PreWrap),
			"postWrap": wrapName(p.Curve.PostWrap),
		}
	case graph.ReferenceType:
		return e.ref(p)
	}
	return nil
}

func (e *encoder) ref(p *graph.Property) any {
	r := p.Ref
	if r.IsNull() {
		return nil
	}
	if r.Kind == graph.AssetRef {
		return map[string]any{"asset": r.Asset}
	}
	path, ok := graph.PathBetween(r.Target(), e.root)
	if !ok {
		e.log.Warn("dropping reference outside of document", "property", p.Name, "target", r.String())
		return nil
	}
	m := map[string]any{"node": path}
	if r.Kind == graph.BehaviorRef {
		m["behavior"] = r.Behavior.Type
		if i := r.Behavior.Index(); i > 0 {
			m["index"] = i
		}
	}
	return m
}

func vec3(v graph.Vector3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func wrapName(w graph.WrapMode) string {
	if w < 0 || int(w) >= len(wrapNames) {
		return wrapNames[graph.WrapDefault]
	}
	return wrapNames[w]
}
