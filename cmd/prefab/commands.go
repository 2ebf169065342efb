package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "prefab").
		WithSynopsis("prefab -db dir [opts] command [opts]").
		WithDescription("prefab compares instances in a scene with their templates and applies the differences to the templates.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return prefabMain(cfg, cc, args)
		}).
		WithSubs(
			CandidatesCommand(cfg),
			DiffCommand(cfg),
			ApplyCommand(cfg),
			IndexCommand(cfg))
}

func CandidatesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CandidatesConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Candidates, "candidates").
		WithAliases("c", "cand").
		WithSynopsis("candidates -scene file -node path").
		WithDescription("list the templates an instance node can be compared with, best first").
		WithOpts(targetOpts(&cfg.Target)...).
		WithRun(func(cc *cli.Context, args []string) error {
			return candidates(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d", "di").
		WithSynopsis("diff -scene file -node path [-select expr] [-json-patch]").
		WithDescription(diffDescription).
		WithOpts(targetOpts(&cfg.Target, cfg)...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Apply, "apply").
		WithAliases("a").
		WithSynopsis("apply -scene file -node path [-select expr] [-all] [-dry-run]").
		WithDescription("apply the selected differences of an instance to its template").
		WithOpts(targetOpts(&cfg.Target, cfg)...).
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
}

func IndexCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &IndexConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Index, "index").
		WithAliases("i", "ls").
		WithSynopsis("index [-check]").
		WithDescription("list the templates of the template directory").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return index(cfg, cc, args)
		})
}

const diffDescription = `diff lists the differences between an instance node and its template.

The instance is the node at -node in the scene document -scene. Templates
are looked up in the template directory by the names of the instance node
and its ancestors, with any "(Clone)" suffix removed. The most specific
template is used unless -candidate names another location.

Each difference is one of

  Deleted behavior: T      the template has a behavior the instance lacks
  Added behavior: T        the instance has a behavior the template lacks
  T.path: old -> new       a property value differs
  New node: path           the template lacks the node, only its parent

Selecting

-select takes a boolean expression over the fields kind, behavior, path,
node, before, after and text of each difference, for example

  kind == "Property" && behavior == "Health" && path startsWith "stats."

-json-patch writes the selected differences as an RFC 6902 patch against
the JSON form of the template document.`
