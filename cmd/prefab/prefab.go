package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/signadot/prefabdiff/assetdb"
	"github.com/signadot/prefabdiff/candidate"
	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/objdiff"
	"github.com/signadot/prefabdiff/store"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
)

func prefabMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.V {
		logLevel.Set(slog.LevelDebug)
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			fmt.Fprintf(cc.Out, "gops agent failed: %v\n", err)
		}
	}
	if cfg.Config != "" {
		cfg.File, err = loadFileConfig(cfg.Config)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func (cfg *MainConfig) openDB() (*assetdb.DB, error) {
	if cfg.DB == "" {
		return nil, fmt.Errorf("%w: -db is required", cli.ErrUsage)
	}
	db, err := assetdb.Open(cfg.DB, &assetdb.Options{Log: theLog})
	if err != nil {
		return nil, fmt.Errorf("error opening template directory: %w", err)
	}
	return db, nil
}

// target is an instance node with its candidate templates.
type target struct {
	db       *assetdb.DB
	instance *graph.Node
	cands    []candidate.Candidate
	differ   *objdiff.Differ
}

func (cfg *MainConfig) loadTarget(tc *TargetConfig) (*target, error) {
	if tc.Scene == "" {
		return nil, fmt.Errorf("%w: -scene is required", cli.ErrUsage)
	}
	db, err := cfg.openDB()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(tc.Scene)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scene, err := store.Decode(f, store.Logger(theLog))
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", tc.Scene, err)
	}
	instance := graph.Resolve(scene, tc.Node)
	if instance == nil {
		return nil, fmt.Errorf("%w: %q in %s: %w", cli.ErrUsage, tc.Node, tc.Scene, graph.ErrNotFound)
	}
	sel := candidate.NewSelector(db, &candidate.Options{
		ParentFallback: tc.Fallback || cfg.File.ParentFallback,
		Log:            theLog,
	})
	cands, err := sel.Candidates(instance)
	if err != nil {
		return nil, err
	}
	return &target{
		db:       db,
		instance: instance,
		cands:    cands,
		differ: objdiff.NewDiffer(&objdiff.Options{
			ExtraBlacklist: tc.ignored(&cfg.File),
			Log:            theLog,
		}),
	}, nil
}

// chosen returns the candidate named loc, or the best one if loc is empty.
func (t *target) chosen(loc string) (candidate.Candidate, error) {
	if loc == "" {
		c, ok := candidate.Pick(t.cands, nil)
		if !ok {
			return c, fmt.Errorf("no template found for %s", t.instance)
		}
		return c, nil
	}
	for _, c := range t.cands {
		if c.Location == loc {
			return c, nil
		}
	}
	return candidate.Candidate{}, fmt.Errorf("%w: %s is not a candidate for %s", cli.ErrUsage, loc, t.instance)
}

func candidates(cfg *CandidatesConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Candidates.Parse(cc, args)
	if err != nil {
		return err
	}
	t, err := cfg.loadTarget(&cfg.Target)
	if err != nil {
		return err
	}
	best, _ := candidate.Pick(t.cands, nil)
	for _, c := range t.cands {
		mark := " "
		if c == best {
			mark = "*"
		}
		extra := ""
		if c.IsNew() {
			extra = " (new node)"
		}
		fmt.Fprintf(cc.Out, "%s %s\t%s%s\n", mark, c.DisplayPath(), c.Location, extra)
	}
	return nil
}

func index(cfg *IndexConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Index.Parse(cc, args)
	if err != nil {
		return err
	}
	db, err := cfg.openDB()
	if err != nil {
		return err
	}
	var errs []error
	for _, loc := range db.Locations() {
		if !cfg.Check {
			fmt.Fprintln(cc.Out, loc)
			continue
		}
		root, err := db.Load(loc)
		if err != nil {
			fmt.Fprintf(cc.Out, "%s\terror: %v\n", loc, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cc.Out, "%s\t%d nodes\n", loc, root.Graph().Len())
	}
	return errors.Join(errs...)
}
