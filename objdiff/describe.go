package objdiff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signadot/prefabdiff/graph"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Description is a rendering of a Record for presentation.
type Description struct {
	Kind     Kind
	Behavior string
	Path     string
	// Before and After are the template and instance sides of a Property
	// change.
	Before string
	After  string
	// Edit is an inline character edit for string properties, with deletions
	// in [-...-] and insertions in {+...+}.
	Edit string
	// Text is a one line summary.
	Text string
}

// Describe renders r. It does not mutate either graph.
func (r *Record) Describe() Description {
	d := Description{Kind: r.Kind, Behavior: r.BehaviorType(), Path: r.Path}
	switch r.Kind {
	case Delete:
		d.Text = "Deleted behavior: " + d.Behavior
	case Add:
		d.Text = "Added behavior: " + d.Behavior
	case New:
		d.Text = "New node: " + r.Path
	case Property:
		prefix := d.Behavior + "." + r.Path + ": "
		switch r.Value.Type {
		case graph.CurveType:
			d.Text = prefix + "animation curve changed"
		case graph.ReferenceType:
			d.After = r.Value.Ref.String()
			if r.Old != nil {
				d.Before = r.Old.Ref.String()
			}
			d.Text = prefix + "reference changed"
		default:
			d.After = FormatValue(r.Value)
			if r.Old != nil {
				d.Before = FormatValue(r.Old)
			}
			d.Text = prefix + d.Before + " -> " + d.After
			if r.Value.Type == graph.StringType && r.Old != nil {
				d.Edit = InlineEdit(r.Old.String, r.Value.String)
			}
		}
	}
	return d
}

// FormatValue renders the value of p.
func FormatValue(p *graph.Property) string {
	switch p.Type {
	case graph.IntType:
		return strconv.FormatInt(p.Int, 10)
	case graph.BoolType:
		return strconv.FormatBool(p.Bool)
	case graph.FloatType:
		return strconv.FormatFloat(p.Float, 'g', -1, 64)
	case graph.StringType:
		return p.String
	case graph.ColorType:
		return p.Color.String()
	case graph.EnumType:
		return p.Enum.Name()
	case graph.Vector2Type:
		return p.Vector2.String()
	case graph.Vector3Type:
		return p.Vector3.String()
	case graph.RotationType:
		return p.Rotation.Euler().String()
	case graph.RectType:
		return p.Rect.String()
	case graph.BoundsType:
		return p.Bounds.String()
	case graph.CurveType:
		return fmt.Sprintf("curve(%d keys)", len(p.Curve.Keys))
	case graph.ReferenceType:
		return p.Ref.String()
	}
	return ""
}

// InlineEdit renders the character edit turning from into to.
func InlineEdit(from, to string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		}
	}
	return b.String()
}
