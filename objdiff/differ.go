package objdiff

import (
	"log/slog"

	"github.com/signadot/prefabdiff/debug"
	"github.com/signadot/prefabdiff/graph"
)

// Blacklist holds the names of internal bookkeeping properties which are
// never compared nor descended into.
var Blacklist = []string{
	"m_ObjectHideFlags",
	"m_PrefabParentObject",
	"m_PrefabInternal",
	"m_GameObject",
	"m_EditorHideFlags",
	"m_FileID",
	"m_PathID",
	"m_Children",
}

type Options struct {
	// ExtraBlacklist adds property names to Blacklist.
	ExtraBlacklist []string
	// Log receives invariant violations. If nil, slog.Default() is used.
	Log *slog.Logger
}

// Differ computes Records.
type Differ struct {
	blacklist map[string]bool
	log       *slog.Logger
}

// NewDiffer returns a Differ configured by opts, which may be nil.
func NewDiffer(opts *Options) *Differ {
	d := &Differ{blacklist: map[string]bool{}}
	for _, name := range Blacklist {
		d.blacklist[name] = true
	}
	if opts != nil {
		for _, name := range opts.ExtraBlacklist {
			d.blacklist[name] = true
		}
		d.log = opts.Log
	}
	return d
}

var defaultDiffer = NewDiffer(nil)

// Compute computes the differences between instance, located under
// instanceRoot, and template, located under templateRoot, using the
// default Differ. See Differ.Compute for the record order.
func Compute(instance, instanceRoot, template, templateRoot *graph.Node) []*Record {
	return defaultDiffer.Compute(instance, instanceRoot, template, templateRoot)
}

func (d *Differ) logger() *slog.Logger {
	if d.log == nil {
		return slog.Default()
	}
	return d.log
}

// Blacklisted reports whether properties named name are skipped.
func (d *Differ) Blacklisted(name string) bool {
	return d.blacklist[name]
}

// Compute computes the differences between instance, located under
// instanceRoot, and template, located under templateRoot. A nil template
// yields a single New record.
//
// Records are grouped by kind: every Delete, then every Add, then every
// Property record, each group in template or instance behavior order. Adds
// of one behavior type come in ascending occurrence index, the order
// Record.Apply expects them in.
func (d *Differ) Compute(instance, instanceRoot, template, templateRoot *graph.Node) []*Record {
	if instance == nil {
		return nil
	}
	if debug.Diff() {
		debug.Logf("diff %s against %s\n", instance, template)
	}
	if template == nil {
		return []*Record{{
			Kind:         New,
			Path:         instance.Name,
			Node:         instance,
			InstanceRoot: instanceRoot,
			TemplateRoot: templateRoot,
		}}
	}

	var deleted, added, props []*Record
	for _, tb := range template.Behaviors() {
		ib := Counterpart(tb, instance)
		if ib == nil {
			deleted = append(deleted, &Record{
				Kind:         Delete,
				Subject:      tb,
				InstanceRoot: instanceRoot,
				TemplateRoot: templateRoot,
			})
			continue
		}
		props = d.diffBehavior(props, ib, tb, instanceRoot, templateRoot)
	}
	for _, ib := range instance.Behaviors() {
		if template.HasBehavior(ib.Type) {
			continue
		}
		added = append(added, &Record{
			Kind:         Add,
			Subject:      ib,
			Node:         template,
			InstanceRoot: instanceRoot,
			TemplateRoot: templateRoot,
		})
	}

	res := make([]*Record, 0, len(deleted)+len(added)+len(props))
	res = append(res, deleted...)
	res = append(res, added...)
	res = append(res, props...)
	return res
}

// Counterpart returns the behavior of instance paired with the template
// behavior tb, or nil if instance has no behavior of that type.
func Counterpart(tb *graph.Behavior, instance *graph.Node) *graph.Behavior {
	cands := instance.BehaviorsOfType(tb.Type)
	switch len(cands) {
	case 0:
		return nil
	case 1:
		return cands[0]
	}
	i := tb.Index()
	if i < 0 {
		i = 0
	}
	return cands[i%len(cands)]
}

func (d *Differ) diffBehavior(dst []*Record, ib, tb *graph.Behavior, instanceRoot, templateRoot *graph.Node) []*Record {
	ib.Walk(func(path string, ip *graph.Property) bool {
		if d.blacklist[ip.Name] {
			return false
		}
		tp := tb.Lookup(path)
		if tp == nil {
			return false
		}
		if ip.Type != tp.Type {
			d.logger().Error("property types differ",
				"behavior", tb.Type, "path", path,
				"instance", ip.Type, "template", tp.Type)
			return false
		}
		if ip.Type == graph.GenericType {
			return true
		}
		val, equal := d.compare(ip, tp, instanceRoot, templateRoot)
		if equal {
			return false
		}
		if debug.Diff() {
			debug.Logf("\t%s.%s differs\n", tb.Type, path)
		}
		dst = append(dst, &Record{
			Kind:         Property,
			Subject:      ib,
			Path:         path,
			Target:       tb,
			Value:        val,
			Old:          tp.Clone(),
			InstanceRoot: instanceRoot,
			TemplateRoot: templateRoot,
		})
		return false
	})
	return dst
}
