package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/signadot/prefabdiff/session"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	DB     string `cli:"name=db desc='template directory'"`
	Config string `cli:"name=config desc='YAML configuration file'"`
	Color  bool   `cli:"name=color desc='color output even when not writing to a terminal'"`
	Gops   bool   `cli:"name=gops desc='start the gops diagnostics agent'"`
	V      bool   `cli:"name=v desc='verbose logging'"`

	File FileConfig

	Main *cli.Command
}

// FileConfig is the content of the -config file.
type FileConfig struct {
	SelectAll      *bool    `yaml:"selectAll"`
	CommitOnApply  bool     `yaml:"commitOnApply"`
	ParentFallback bool     `yaml:"parentFallback"`
	Blacklist      []string `yaml:"blacklist"`
}

func loadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	d, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(d, &fc); err != nil {
		return fc, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return fc, nil
}

func (fc *FileConfig) session() session.Config {
	cfg := session.DefaultConfig()
	if fc.SelectAll != nil {
		cfg.DefaultSelectAll = *fc.SelectAll
	}
	cfg.CommitOnApply = fc.CommitOnApply
	return cfg
}

// TargetConfig selects the instance node and its template.
type TargetConfig struct {
	Scene     string `cli:"name=scene aliases=s desc='scene document containing the instance'"`
	Node      string `cli:"name=node aliases=n desc='path of the instance node in the scene'"`
	Candidate string `cli:"name=candidate aliases=c desc='template location to diff against (default best)'"`
	Fallback  bool   `cli:"name=fallback desc='consider templates which only have the parent of the node'"`
	Ignore    string `cli:"name=ignore desc='comma separated property names to ignore'"`
}

func (tc *TargetConfig) ignored(fc *FileConfig) []string {
	res := append([]string(nil), fc.Blacklist...)
	for _, name := range strings.Split(tc.Ignore, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			res = append(res, name)
		}
	}
	return res
}

// targetOpts returns the options of tc followed by those of cfgs.
func targetOpts(tc *TargetConfig, cfgs ...any) []*cli.Opt {
	opts, err := cli.StructOpts(tc)
	if err != nil {
		panic(err)
	}
	for _, cfg := range cfgs {
		cOpts, err := cli.StructOpts(cfg)
		if err != nil {
			panic(err)
		}
		opts = append(opts, cOpts...)
	}
	return opts
}

type CandidatesConfig struct {
	*MainConfig
	Target TargetConfig

	Candidates *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Target TargetConfig

	Select    string `cli:"name=select desc='only show records matching an expression'"`
	JSONPatch bool   `cli:"name=json-patch aliases=j desc='output an RFC 6902 patch for the template document'"`

	Diff *cli.Command
}

type ApplyConfig struct {
	*MainConfig
	Target TargetConfig

	Select string `cli:"name=select desc='apply records matching an expression'"`
	All    bool   `cli:"name=all desc='apply all records, ignoring selectAll from the config file'"`
	Commit bool   `cli:"name=commit desc='commit after applying, as commitOnApply'"`
	DryRun bool   `cli:"name=dry-run desc='do not write templates'"`

	Apply *cli.Command
}

type IndexConfig struct {
	*MainConfig
	Check bool `cli:"name=check desc='load every template and report errors'"`

	Index *cli.Command
}
