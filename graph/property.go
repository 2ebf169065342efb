package graph

import (
	"fmt"
	"slices"
)

// Type is the semantic type of a Property.
type Type int

const (
	GenericType Type = iota
	IntType
	BoolType
	FloatType
	StringType
	ColorType
	EnumType
	Vector2Type
	Vector3Type
	RotationType
	RectType
	BoundsType
	CurveType
	ReferenceType
)

var typeNames = []string{
	GenericType:   "generic",
	IntType:       "int",
	BoolType:      "bool",
	FloatType:     "float",
	StringType:    "string",
	ColorType:     "color",
	EnumType:      "enum",
	Vector2Type:   "vector2",
	Vector3Type:   "vector3",
	RotationType:  "rotation",
	RectType:      "rect",
	BoundsType:    "bounds",
	CurveType:     "curve",
	ReferenceType: "ref",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Types returns every property type.
func Types() []Type {
	res := make([]Type, len(typeNames))
	for i := range typeNames {
		res[i] = Type(i)
	}
	return res
}

// ParseType parses the name of a type as produced by Type.String.
func ParseType(s string) (Type, error) {
	i := slices.Index(typeNames, s)
	if i < 0 {
		return 0, fmt.Errorf("unknown property type %q", s)
	}
	return Type(i), nil
}

// Property is a named value owned by a Behavior. The Type field selects the
// meaningful value field; GenericType properties only hold Children.
type Property struct {
	Name string
	Type Type

	Int      int64
	Bool     bool
	Float    float64
	String   string
	Color    Color
	Enum     Enum
	Vector2  Vector2
	Vector3  Vector3
	Rotation Quaternion
	Rect     Rect
	Bounds   Bounds
	Curve    Curve
	Ref      Ref

	Children []*Property
}

func Int(name string, v int64) *Property {
	return &Property{Name: name, Type: IntType, Int: v}
}

func Bool(name string, v bool) *Property {
	return &Property{Name: name, Type: BoolType, Bool: v}
}

func Float(name string, v float64) *Property {
	return &Property{Name: name, Type: FloatType, Float: v}
}

func String(name string, v string) *Property {
	return &Property{Name: name, Type: StringType, String: v}
}

func ColorProp(name string, v Color) *Property {
	return &Property{Name: name, Type: ColorType, Color: v}
}

func EnumProp(name string, index int, names ...string) *Property {
	return &Property{Name: name, Type: EnumType, Enum: Enum{Index: index, Names: names}}
}

func Vector2Prop(name string, v Vector2) *Property {
	return &Property{Name: name, Type: Vector2Type, Vector2: v}
}

func Vector3Prop(name string, v Vector3) *Property {
	return &Property{Name: name, Type: Vector3Type, Vector3: v}
}

func RotationProp(name string, v Quaternion) *Property {
	return &Property{Name: name, Type: RotationType, Rotation: v}
}

func RectProp(name string, v Rect) *Property {
	return &Property{Name: name, Type: RectType, Rect: v}
}

func BoundsProp(name string, v Bounds) *Property {
	return &Property{Name: name, Type: BoundsType, Bounds: v}
}

func CurveProp(name string, v Curve) *Property {
	return &Property{Name: name, Type: CurveType, Curve: v}
}

func RefProp(name string, v Ref) *Property {
	return &Property{Name: name, Type: ReferenceType, Ref: v}
}

func Generic(name string, children ...*Property) *Property {
	return &Property{Name: name, Type: GenericType, Children: children}
}

// Clone returns a deep copy of p. References are copied verbatim.
func (p *Property) Clone() *Property {
	res := &Property{}
	*res = *p
	res.Enum.Names = slices.Clone(p.Enum.Names)
	res.Curve.Keys = slices.Clone(p.Curve.Keys)
	res.Children = cloneProps(p.Children)
	return res
}

func cloneProps(props []*Property) []*Property {
	if props == nil {
		return nil
	}
	res := make([]*Property, len(props))
	for i, p := range props {
		res[i] = p.Clone()
	}
	return res
}

// Assign copies the value of src into p, keeping the name of p.
func (p *Property) Assign(src *Property) {
	name := p.Name
	*p = *src.Clone()
	p.Name = name
}

// ValueEqual reports whether p and o hold the same value. References compare
// by identity; generic properties compare their children recursively.
func (p *Property) ValueEqual(o *Property) bool {
	if p.Type != o.Type {
		return false
	}
	switch p.Type {
	case IntType:
		return p.Int == o.Int
	case BoolType:
		return p.Bool == o.Bool
	case FloatType:
		return p.Float == o.Float
	case StringType:
		return p.String == o.String
	case ColorType:
		return p.Color == o.Color
	case EnumType:
		return p.Enum.Index == o.Enum.Index
	case Vector2Type:
		return p.Vector2 == o.Vector2
	case Vector3Type:
		return p.Vector3 == o.Vector3
	case RotationType:
		return p.Rotation == o.Rotation
	case RectType:
		return p.Rect == o.Rect
	case BoundsType:
		return p.Bounds == o.Bounds
	case CurveType:
		return p.Curve.Equal(o.Curve)
	case ReferenceType:
		return p.Ref == o.Ref
	case GenericType:
		if len(p.Children) != len(o.Children) {
			return false
		}
		for i, c := range p.Children {
			if c.Name != o.Children[i].Name || !c.ValueEqual(o.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}
