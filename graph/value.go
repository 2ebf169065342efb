package graph

import (
	"fmt"
	"math"
	"slices"
)

type Color struct {
	R, G, B, A float64
}

// String formats c with channels scaled to 0..255.
func (c Color) String() string {
	return fmt.Sprintf("(%.0f,%.0f,%.0f,%.0f)", c.R*255, c.G*255, c.B*255, c.A*255)
}

// Enum is an enumerated value stored as an ordinal plus the symbolic names.
type Enum struct {
	Index int
	Names []string
}

// Name returns the symbolic name of the value, or the ordinal when no name
// is known.
func (e Enum) Name() string {
	if e.Index >= 0 && e.Index < len(e.Names) {
		return e.Names[e.Index]
	}
	return fmt.Sprintf("#%d", e.Index)
}

type Vector2 struct {
	X, Y float64
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Quaternion is a rotation.
type Quaternion struct {
	X, Y, Z, W float64
}

// Identity is the rotation that rotates nothing.
var Identity = Quaternion{W: 1}

// Euler returns the rotation as angles in degrees around the x, y and z axes,
// applied in z, x, y order.
func (q Quaternion) Euler() Vector3 {
	sinX := 2 * (q.W*q.X - q.Y*q.Z)
	var x float64
	if math.Abs(sinX) >= 1 {
		x = math.Copysign(math.Pi/2, sinX)
	} else {
		x = math.Asin(sinX)
	}
	y := math.Atan2(2*(q.W*q.Y+q.X*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
	z := math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.X*q.X+q.Z*q.Z))
	return Vector3{X: degrees(x), Y: degrees(y), Z: degrees(z)}
}

func degrees(r float64) float64 {
	d := math.Mod(r*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	return math.Round(d*1000) / 1000
}

func (q Quaternion) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", q.X, q.Y, q.Z, q.W)
}

type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) String() string {
	return fmt.Sprintf("(x:%g, y:%g, width:%g, height:%g)", r.X, r.Y, r.Width, r.Height)
}

type Bounds struct {
	Center, Extents Vector3
}

func (b Bounds) String() string {
	return fmt.Sprintf("Center: %s, Extents: %s", b.Center, b.Extents)
}

// WrapMode is the extrapolation of a curve before its first or after its
// last keyframe.
type WrapMode int

const (
	WrapDefault WrapMode = iota
	WrapOnce
	WrapLoop
	WrapPingPong
	WrapClamp
)

type Keyframe struct {
	Time       float64
	Value      float64
	InTangent  float64
	OutTangent float64
}

// Curve is an animation curve.
type Curve struct {
	Keys     []Keyframe
	PreWrap  WrapMode
	PostWrap WrapMode
}

// Equal reports whether c and o have the same wrap modes and keyframes.
func (c Curve) Equal(o Curve) bool {
	if c.PreWrap != o.PreWrap || c.PostWrap != o.PostWrap {
		return false
	}
	return slices.Equal(c.Keys, o.Keys)
}

// RefKind tells what a Ref points to.
type RefKind int

const (
	NullRef RefKind = iota
	AssetRef
	NodeRef
	BehaviorRef
)

// Ref is an object reference. It points either to a persisted asset outside
// of any live graph, to a Node, or to a Behavior.
type Ref struct {
	Kind     RefKind
	Asset    string
	Node     *Node
	Behavior *Behavior
}

func RefToAsset(asset string) Ref {
	return Ref{Kind: AssetRef, Asset: asset}
}

func RefTo(n *Node) Ref {
	if n == nil {
		return Ref{}
	}
	return Ref{Kind: NodeRef, Node: n}
}

func RefToBehavior(b *Behavior) Ref {
	if b == nil {
		return Ref{}
	}
	return Ref{Kind: BehaviorRef, Behavior: b}
}

// IsNull reports whether r points to nothing.
func (r Ref) IsNull() bool {
	switch r.Kind {
	case AssetRef:
		return r.Asset == ""
	case NodeRef:
		return r.Node == nil
	case BehaviorRef:
		return r.Behavior == nil
	}
	return true
}

// Target returns the node r points to: the node itself for a node
// reference, the owning node for a behavior reference, nil otherwise.
func (r Ref) Target() *Node {
	switch r.Kind {
	case NodeRef:
		return r.Node
	case BehaviorRef:
		return r.Behavior.Node()
	}
	return nil
}

func (r Ref) String() string {
	switch r.Kind {
	case AssetRef:
		return "asset:" + r.Asset
	case NodeRef:
		if r.Node != nil {
			return r.Node.Path()
		}
	case BehaviorRef:
		if n := r.Behavior.Node(); n != nil {
			return n.Path() + ":" + r.Behavior.Type
		}
		if r.Behavior != nil {
			return r.Behavior.Type
		}
	}
	return "None"
}
