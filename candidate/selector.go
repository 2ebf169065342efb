package candidate

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/signadot/prefabdiff/debug"
	"github.com/signadot/prefabdiff/graph"
)

type Options struct {
	// ParentFallback keeps templates which lack the instance node but have
	// its parent, as New candidates.
	ParentFallback bool
	// Log receives template load failures. If nil, slog.Default() will be
	// used.
	Log *slog.Logger
}

// Selector finds candidates in an Index.
type Selector struct {
	index Index
	opts  Options
}

// NewSelector returns a selector over index. opts may be nil.
func NewSelector(index Index, opts *Options) *Selector {
	s := &Selector{index: index}
	if opts != nil {
		s.opts = *opts
	}
	if s.opts.Log == nil {
		s.opts.Log = slog.Default()
	}
	return s
}

// Candidates returns the candidates for instance, most specific first: a
// longer path means the instance node was matched below a deeper template
// root. The result is empty when no template matches.
func (s *Selector) Candidates(instance *graph.Node) ([]Candidate, error) {
	if instance == nil {
		return nil, nil
	}
	if err := s.index.Refresh(); err != nil {
		return nil, err
	}
	var res []Candidate
	for root := instance; root != nil; root = root.Parent() {
		name := StripClone(root.Name)
		for _, loc := range s.index.Lookup(name) {
			c, ok := s.candidate(instance, root, loc)
			if !ok {
				continue
			}
			if debug.Candidates() {
				debug.Logf("candidate %s for %s at %s\n", c.DisplayPath(), instance, loc)
			}
			res = append(res, c)
		}
	}
	slices.SortStableFunc(res, func(a, b Candidate) int {
		return cmp.Compare(len(b.Path), len(a.Path))
	})
	return res, nil
}

func (s *Selector) candidate(instance, root *graph.Node, loc string) (Candidate, bool) {
	tRoot, err := s.index.Load(loc)
	if err != nil {
		s.opts.Log.Warn("cannot load template", "location", loc, "err", err)
		return Candidate{}, false
	}
	path, _ := graph.PathBetween(instance, root)
	c := Candidate{
		InstanceRoot: root,
		TemplateRoot: tRoot,
		Template:     graph.Resolve(tRoot, path),
		Path:         path,
		Location:     loc,
	}
	if c.Template != nil {
		return c, true
	}
	if !s.opts.ParentFallback || path == "" {
		return Candidate{}, false
	}
	c.Path = graph.ParentPath(path)
	if graph.Resolve(tRoot, c.Path) == nil {
		return Candidate{}, false
	}
	return c, true
}
