// Package candidate finds the templates an instance node may have been
// instantiated from.
//
// Instances are not linked to their templates. A template is found by name:
// the instance node and each of its ancestors is a potential instance root,
// and templates whose bare name is the name of that ancestor, without a
// CloneSuffix, are candidates. A candidate is kept when the path from the
// ancestor down to the instance node also exists in the template.
package candidate

import (
	"strings"

	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/objdiff"
)

// CloneSuffix is appended to the name of nodes instantiated from a template.
const CloneSuffix = "(Clone)"

// StripClone removes CloneSuffix from name.
func StripClone(name string) string {
	return strings.TrimSuffix(name, CloneSuffix)
}

// Index is a template index.
type Index interface {
	// Lookup returns the locations of the templates with bare name name.
	Lookup(name string) []string
	// Load returns the root of the template at loc.
	Load(loc string) (*graph.Node, error)
	// Refresh brings the index up to date. It is called before every
	// selection.
	Refresh() error
}

// Candidate pairs an instance subtree with a template location.
type Candidate struct {
	// InstanceRoot is the ancestor of the instance node matched by name.
	InstanceRoot *graph.Node
	// TemplateRoot is the root of the template.
	TemplateRoot *graph.Node
	// Template is the template node corresponding to the instance node, nil
	// for a parent fallback candidate.
	Template *graph.Node
	// Path is the path of Template below TemplateRoot, or of its would-be
	// parent for a parent fallback candidate.
	Path string
	// Location is the index location of the template.
	Location string
}

// Valid reports whether c has a template node.
func (c Candidate) Valid() bool {
	return c.Template != nil
}

// IsNew reports whether c is a parent fallback candidate: the instance node
// has no template node and diffing it yields a New record.
func (c Candidate) IsNew() bool {
	return c.Template == nil && c.TemplateRoot != nil
}

// DisplayPath renders the template side of c as the template root name
// followed by the path.
func (c Candidate) DisplayPath() string {
	if c.TemplateRoot == nil {
		return ""
	}
	if c.Path == "" {
		return c.TemplateRoot.Name + " (root)"
	}
	return c.TemplateRoot.Name + graph.Separator + c.Path
}

// Diff computes the records turning the template side of c into instance,
// which must be the node c was selected for.
func (c Candidate) Diff(d *objdiff.Differ, instance *graph.Node) []*objdiff.Record {
	return d.Compute(instance, c.InstanceRoot, c.Template, c.TemplateRoot)
}

// Pick returns the candidate to work with: current when it is still among
// cands, otherwise the best one.
func Pick(cands []Candidate, current *Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	if current != nil {
		for _, c := range cands {
			if c == *current {
				return c, true
			}
		}
	}
	return cands[0], true
}
