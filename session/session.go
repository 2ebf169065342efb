// Package session holds the state of an editing session over one instance:
// which diff records are selected, and the batch application of the selected
// ones to the template.
//
// Selection survives recomputation of the records: it is keyed by record
// identity (objdiff.ID), not by record. Two sets of overrides are kept,
// explicitly selected and explicitly deselected records, so that switching
// the select-all default keeps both kinds of overrides.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/objdiff"
)

type Config struct {
	// DefaultSelectAll selects every record which was not explicitly
	// deselected.
	DefaultSelectAll bool `yaml:"selectAll"`
	// CommitOnApply commits modified templates after every batch apply.
	// Otherwise a save is only recommended.
	CommitOnApply bool `yaml:"commitOnApply"`
}

func DefaultConfig() Config {
	return Config{DefaultSelectAll: true}
}

// Persister persists modified templates.
type Persister interface {
	MarkDirty(root *graph.Node)
	Commit() error
}

type Session struct {
	cfg   Config
	store Persister
	log   *slog.Logger

	selected        map[objdiff.ID]struct{}
	deselected      map[objdiff.ID]struct{}
	saveRecommended bool
}

// New creates a session. store may be nil, in which case nothing is
// persisted. If log is nil, slog.Default() will be used.
func New(cfg Config, store Persister, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		cfg:        cfg,
		store:      store,
		log:        log,
		selected:   map[objdiff.ID]struct{}{},
		deselected: map[objdiff.ID]struct{}{},
	}
}

func (s *Session) Config() Config {
	return s.cfg
}

// SetDefaultSelectAll switches the selection default. Explicit overrides
// are kept.
func (s *Session) SetDefaultSelectAll(on bool) {
	s.cfg.DefaultSelectAll = on
}

// IsSelected reports whether the record identified by id is selected.
func (s *Session) IsSelected(id objdiff.ID) bool {
	if s.cfg.DefaultSelectAll {
		_, off := s.deselected[id]
		return !off
	}
	_, on := s.selected[id]
	return on
}

// SetSelected explicitly selects or deselects the record identified by id.
func (s *Session) SetSelected(id objdiff.ID, on bool) {
	if on {
		s.selected[id] = struct{}{}
		delete(s.deselected, id)
		return
	}
	s.deselected[id] = struct{}{}
	delete(s.selected, id)
}

// Reset drops every explicit override, for instance when the session moves
// to another instance.
func (s *Session) Reset() {
	clear(s.selected)
	clear(s.deselected)
}

// Selected returns the selected records among records, in order.
func (s *Session) Selected(records []*objdiff.Record) []*objdiff.Record {
	var res []*objdiff.Record
	for _, r := range records {
		if s.IsSelected(r.ID()) {
			res = append(res, r)
		}
	}
	return res
}

// Apply applies the selected records to the template below templateRoot as
// one edit, then marks the template dirty once. Every selected record is
// attempted; failures are joined in the returned error. It returns the
// number of records applied.
//
// New records are applied after the others since they replace the content
// of the template graph.
func (s *Session) Apply(records []*objdiff.Record, templateRoot *graph.Node) (int, error) {
	sel := s.Selected(records)
	if len(sel) == 0 {
		return 0, nil
	}
	slices.SortStableFunc(sel, func(a, b *objdiff.Record) int {
		return boolCmp(a.Kind == objdiff.New, b.Kind == objdiff.New)
	})
	var (
		errs []error
		n    int
	)
	templateRoot.Graph().Edit(func() {
		for _, r := range sel {
			if err := r.Apply(); err != nil {
				s.log.Warn("cannot apply", "record", r.String(), "err", err)
				errs = append(errs, fmt.Errorf("%s: %w", r, err))
				continue
			}
			n++
		}
	})
	if n == 0 {
		return 0, errors.Join(errs...)
	}
	s.log.Debug("applied records", "template", templateRoot.Name, "applied", n, "failed", len(errs))
	if s.store != nil {
		s.store.MarkDirty(templateRoot)
	}
	if s.cfg.CommitOnApply {
		if err := s.commit(); err != nil {
			errs = append(errs, err)
		}
	} else {
		s.saveRecommended = true
	}
	return n, errors.Join(errs...)
}

// SaveRecommended reports whether templates were modified and not committed.
func (s *Session) SaveRecommended() bool {
	return s.saveRecommended
}

// Save commits modified templates.
func (s *Session) Save() error {
	return s.commit()
}

func (s *Session) commit() error {
	if s.store == nil {
		s.saveRecommended = false
		return nil
	}
	if err := s.store.Commit(); err != nil {
		s.saveRecommended = true
		return err
	}
	s.saveRecommended = false
	return nil
}

func boolCmp(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}
