package session

import (
	"errors"
	"fmt"

	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/objdiff"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var ErrBadFilter = errors.New("bad filter")

// recordEnv is the environment of filter expressions.
type recordEnv struct {
	Kind     string `expr:"kind"`
	Behavior string `expr:"behavior"`
	Path     string `expr:"path"`
	Node     string `expr:"node"`
	Before   string `expr:"before"`
	After    string `expr:"after"`
	Text     string `expr:"text"`
}

func envOf(r *objdiff.Record) recordEnv {
	d := r.Describe()
	return recordEnv{
		Kind:     r.Kind.String(),
		Behavior: d.Behavior,
		Path:     d.Path,
		Node:     nodePath(r),
		Before:   d.Before,
		After:    d.After,
		Text:     d.Text,
	}
}

// nodePath returns the path of the node r is about, from the root of its
// side.
func nodePath(r *objdiff.Record) string {
	var n, root *graph.Node
	switch r.Kind {
	case objdiff.Delete:
		n, root = r.Subject.Node(), r.TemplateRoot
	case objdiff.New:
		n, root = r.Node, r.InstanceRoot
	default:
		n, root = r.Subject.Node(), r.InstanceRoot
	}
	p, _ := graph.PathBetween(n, root)
	return p
}

// Filter is a compiled record filter.
type Filter struct {
	src string
	prg *vm.Program
}

// CompileFilter compiles a boolean expression over the fields kind,
// behavior, path, node, before, after and text of a record, for example
//
//	kind == "Property" && behavior == "Health" && path startsWith "stats."
func CompileFilter(src string) (*Filter, error) {
	prg, err := expr.Compile(src, expr.Env(recordEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFilter, err)
	}
	return &Filter{src: src, prg: prg}, nil
}

func (f *Filter) String() string {
	return f.src
}

// Match reports whether r matches f.
func (f *Filter) Match(r *objdiff.Record) (bool, error) {
	res, err := expr.Run(f.prg, envOf(r))
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrBadFilter, f.src, err)
	}
	return res.(bool), nil
}

// SelectWhere explicitly selects the records matching the expression src
// and deselects the others. It returns the number of records selected.
func (s *Session) SelectWhere(records []*objdiff.Record, src string) (int, error) {
	f, err := CompileFilter(src)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return n, err
		}
		s.SetSelected(r.ID(), ok)
		if ok {
			n++
		}
	}
	return n, nil
}
