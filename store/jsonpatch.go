package store

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/objdiff"

	jsonpatch "github.com/evanphx/json-patch"
)

type patchOp struct {
	Op    string `yaml:"op"`
	Path  string `yaml:"path"`
	Value any    `yaml:"value"`
}

type removeOp struct {
	Op   string `yaml:"op"`
	Path string `yaml:"path"`
}

type removal struct {
	node  string
	index int
}

// patchBuilder renders records as operations against the JSON encoding of
// the tree below root.
type patchBuilder struct {
	root *graph.Node
	o    *options
	// appended counts the elements added by the patch to each list pointer.
	appended map[string]int

	sets, adds []patchOp
	removes    []removal
}

// JSONPatch renders records as an RFC 6902 patch against the document
// encoding of templateRoot. Applying the patch to that document has the
// effect of applying the records to the template graph. Records whose
// template side is not below templateRoot are skipped; a New record whose
// node already exists in the template yields no operation.
func JSONPatch(records []*objdiff.Record, templateRoot *graph.Node, opts ...Option) ([]byte, error) {
	b := &patchBuilder{root: templateRoot, o: makeOptions(opts), appended: map[string]int{}}
	for _, r := range records {
		if err := b.add(r); err != nil {
			return nil, fmt.Errorf("%s: %w", r, err)
		}
	}
	ops := make([]any, 0, len(b.sets)+len(b.adds)+len(b.removes))
	for _, op := range b.sets {
		ops = append(ops, op)
	}
	for _, op := range b.adds {
		ops = append(ops, op)
	}
	// removals last and from the end so earlier pointers stay valid
	slices.SortFunc(b.removes, func(x, y removal) int {
		if c := strings.Compare(x.node, y.node); c != 0 {
			return c
		}
		return cmp.Compare(y.index, x.index)
	})
	b.removes = slices.Compact(b.removes)
	for _, rm := range b.removes {
		ops = append(ops, removeOp{Op: "remove", Path: rm.node + "/behaviors/" + strconv.Itoa(rm.index)})
	}
	d, err := toJSON(ops)
	if err != nil {
		return nil, err
	}
	if _, err := jsonpatch.DecodePatch(d); err != nil {
		return nil, fmt.Errorf("generated invalid patch: %w", err)
	}
	return d, nil
}

func (b *patchBuilder) add(r *objdiff.Record) error {
	switch r.Kind {
	case objdiff.Delete:
		n := r.Subject.Node()
		ptr, ok := b.pointer(n)
		if !ok {
			return nil
		}
		b.removes = append(b.removes, removal{node: ptr, index: slices.Index(n.Behaviors(), r.Subject)})
	case objdiff.Add:
		ptr, ok := b.pointer(r.Node)
		if !ok {
			return nil
		}
		e := &encoder{root: r.InstanceRoot, log: b.o.log}
		bd := e.behavior(r.Subject)
		// same slot as Record.Apply: the template behavior at the occurrence
		// index, or a new one
		if same := r.Node.BehaviorsOfType(r.Subject.Type); r.Subject.Index() >= 0 && r.Subject.Index() < len(same) {
			j := slices.Index(r.Node.Behaviors(), same[r.Subject.Index()])
			b.sets = append(b.sets, patchOp{Op: "replace", Path: ptr + "/behaviors/" + strconv.Itoa(j), Value: bd})
			return nil
		}
		b.appendTo(ptr+"/behaviors", len(r.Node.Behaviors()), bd)
	case objdiff.Property:
		n := r.Target.Node()
		ptr, ok := b.pointer(n)
		if !ok {
			return nil
		}
		pptr, err := propertyPointer(r.Target, r.Path)
		if err != nil {
			return err
		}
		ptr += "/behaviors/" + strconv.Itoa(slices.Index(n.Behaviors(), r.Target)) + pptr
		e := &encoder{root: b.root, log: b.o.log}
		b.sets = append(b.sets, patchOp{Op: "add", Path: ptr + "/value", Value: e.value(r.Value)})
	case objdiff.New:
		return b.addNode(r)
	default:
		return fmt.Errorf("unknown diff kind %s", r.Kind)
	}
	return nil
}

func (b *patchBuilder) addNode(r *objdiff.Record) error {
	path, ok := graph.PathBetween(r.Node, r.InstanceRoot)
	if !ok || path == "" {
		return fmt.Errorf("%w: %s is not below the instance root", objdiff.ErrNoParent, r.Node)
	}
	parent := graph.Resolve(b.root, graph.ParentPath(path))
	if parent == nil {
		return fmt.Errorf("%w: %q", objdiff.ErrNoParent, graph.ParentPath(path))
	}
	if parent.Child(r.Node.Name) != nil {
		return nil
	}
	ptr, ok := b.pointer(parent)
	if !ok {
		return nil
	}
	e := &encoder{root: r.InstanceRoot, log: b.o.log}
	nd := &nodeDoc{Name: r.Node.Name}
	var transform *graph.Behavior
	for _, bh := range r.Node.Behaviors() {
		if bh.Type == graph.TransformType && transform == nil {
			transform = bh
			continue
		}
		nd.Behaviors = append(nd.Behaviors, e.behavior(bh))
	}
	if transform != nil {
		nd.Behaviors = append(nd.Behaviors, e.behavior(transform))
	}
	b.appendTo(ptr+"/children", len(parent.Children()), nd)
	return nil
}

// appendTo appends v to the list at ptr, which holds n elements in the
// document. Empty lists are omitted from documents and are created whole.
func (b *patchBuilder) appendTo(ptr string, n int, v any) {
	if n+b.appended[ptr] == 0 {
		b.adds = append(b.adds, patchOp{Op: "add", Path: ptr, Value: []any{v}})
	} else {
		b.adds = append(b.adds, patchOp{Op: "add", Path: ptr + "/-", Value: v})
	}
	b.appended[ptr]++
}

// pointer returns the JSON pointer of the document encoding of n, or false
// if n is not below the root.
func (b *patchBuilder) pointer(n *graph.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	var idx []int
	for ; n != b.root; n = n.Parent() {
		p := n.Parent()
		if p == nil {
			return "", false
		}
		idx = append(idx, slices.Index(p.Children(), n))
	}
	var sb strings.Builder
	for i := len(idx) - 1; i >= 0; i-- {
		sb.WriteString("/children/")
		sb.WriteString(strconv.Itoa(idx[i]))
	}
	return sb.String(), true
}

// propertyPointer returns the pointer of the property at path relative to
// the document encoding of b.
func propertyPointer(b *graph.Behavior, path string) (string, error) {
	var sb strings.Builder
	props := b.Properties
	list := "/properties/"
	for _, name := range strings.Split(path, graph.PathSeparator) {
		i := slices.IndexFunc(props, func(p *graph.Property) bool { return p.Name == name })
		if i < 0 {
			return "", fmt.Errorf("%w: property %s.%s", graph.ErrNotFound, b.Type, path)
		}
		sb.WriteString(list)
		sb.WriteString(strconv.Itoa(i))
		props = props[i].Children
		list = "/children/"
	}
	return sb.String(), nil
}

// ApplyJSONPatch applies an RFC 6902 patch to the document encoding of root
// and returns the root of the resulting tree, a new graph. root is not
// modified.
func ApplyJSONPatch(root *graph.Node, patch []byte, opts ...Option) (*graph.Node, error) {
	o := makeOptions(opts)
	p, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, err
	}
	doc, err := marshalJSON(root, o)
	if err != nil {
		return nil, err
	}
	out, err := p.Apply(doc)
	if err != nil {
		return nil, err
	}
	return Unmarshal(out, opts...)
}
