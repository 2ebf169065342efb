package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/signadot/prefabdiff/objdiff"
	"github.com/signadot/prefabdiff/session"
	"github.com/signadot/prefabdiff/store"

	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	t, err := cfg.loadTarget(&cfg.Target)
	if err != nil {
		return err
	}
	c, err := t.chosen(cfg.Target.Candidate)
	if err != nil {
		return err
	}
	records := c.Diff(t.differ, t.instance)
	if cfg.Select != "" {
		s := session.New(session.Config{}, nil, theLog)
		if _, err := s.SelectWhere(records, cfg.Select); err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		records = s.Selected(records)
	}
	if cfg.JSONPatch {
		d, err := store.JSONPatch(records, c.TemplateRoot, store.Logger(theLog))
		if err != nil {
			return err
		}
		_, err = cc.Out.Write(append(d, '\n'))
		return err
	}
	fmt.Fprintf(cc.Out, "# %s (%s)\n", c.DisplayPath(), c.Location)
	pal := newPalette(cc.Out, cfg.Color)
	for _, r := range records {
		writeRecord(cc.Out, pal, r, nil)
	}
	return nil
}

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		return err
	}
	t, err := cfg.loadTarget(&cfg.Target)
	if err != nil {
		return err
	}
	c, err := t.chosen(cfg.Target.Candidate)
	if err != nil {
		return err
	}
	records := c.Diff(t.differ, t.instance)
	if len(records) == 0 {
		fmt.Fprintf(cc.Out, "%s is up to date\n", c.DisplayPath())
		return nil
	}

	sCfg := cfg.File.session()
	if cfg.All {
		sCfg.DefaultSelectAll = true
	}
	if cfg.Commit {
		sCfg.CommitOnApply = true
	}
	if cfg.DryRun {
		sCfg.CommitOnApply = false
	}
	s := session.New(sCfg, t.db, theLog)
	if cfg.Select != "" && !cfg.All {
		if _, err := s.SelectWhere(records, cfg.Select); err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}

	pal := newPalette(cc.Out, cfg.Color)
	for _, r := range records {
		writeRecord(cc.Out, pal, r, s)
	}
	n, applyErr := s.Apply(records, c.TemplateRoot)
	fmt.Fprintf(cc.Out, "applied %d of %d records to %s\n", n, len(records), c.Location)
	if !s.SaveRecommended() {
		return applyErr
	}
	if cfg.DryRun {
		fmt.Fprintln(cc.Out, "dry run, templates not written")
		return applyErr
	}
	if err := s.Save(); err != nil {
		return fmt.Errorf("error saving %s: %w", c.Location, err)
	}
	return applyErr
}

// writeRecord writes one row for r. If s is not nil the row is prefixed by
// the selection state of r.
func writeRecord(w io.Writer, pal *palette, r *objdiff.Record, s *session.Session) {
	d := r.Describe()
	prefix := ""
	if s != nil {
		prefix = "[ ] "
		if s.IsSelected(r.ID()) {
			prefix = "[x] "
		}
	}
	fmt.Fprintf(w, "%s%s\n", prefix, pal.kind(d.Kind)("%s", d.Text))
	if d.Edit != "" {
		fmt.Fprintf(w, "%s    %s\n", strings.Repeat(" ", len(prefix)), d.Edit)
	}
}
