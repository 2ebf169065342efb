// Package assetdb indexes a directory of template documents.
//
// Templates are YAML documents (see package store) stored anywhere below the
// directory with a .yaml or .yml extension. A template is identified by its
// location, the slash separated path of its file relative to the directory,
// and looked up by its bare name, the file name without extension. Several
// locations may share a bare name.
//
// Loaded templates are cached: loading a location twice returns the same
// graph, so edits applied to a template are seen by later lookups until they
// are committed back to disk.
package assetdb

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/signadot/prefabdiff/debug"
	"github.com/signadot/prefabdiff/graph"
	"github.com/signadot/prefabdiff/store"
)

var ErrUnknownLocation = errors.New("unknown template location")

type Options struct {
	// Log receives warnings. If nil, slog.Default() will be used.
	Log *slog.Logger
}

// DB is a template index over a directory. It is safe for concurrent use,
// the graphs it returns are not.
type DB struct {
	dir string
	log *slog.Logger

	mu sync.Mutex
	// count is the number of template files seen by the last rebuild.
	count  int
	byName map[string][]string
	locs   map[string]bool
	loaded map[string]*graph.Node
	owners map[*graph.Graph]string
	dirty  map[string]bool
}

// Open opens the template index over dir and builds it.
func Open(dir string, opts *Options) (*DB, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	db := &DB{
		dir:    dir,
		count:  -1,
		loaded: map[string]*graph.Node{},
		owners: map[*graph.Graph]string{},
		dirty:  map[string]bool{},
	}
	if opts != nil {
		db.log = opts.Log
	}
	if db.log == nil {
		db.log = slog.Default()
	}
	if err := db.Rebuild(); err != nil {
		return nil, err
	}
	return db, nil
}

// Dir returns the directory db indexes.
func (db *DB) Dir() string {
	return db.dir
}

// IsTemplateFile reports whether name has a template extension.
func IsTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// BareName returns the bare name of the template at location loc.
func BareName(loc string) string {
	base := path.Base(loc)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Refresh rescans the directory and rebuilds the index when the number of
// template files changed since the last rebuild. Renames which keep the
// number of files are not detected; use Rebuild for those.
func (db *DB) Refresh() error {
	files, err := db.scan()
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(files) == db.count {
		if debug.Index() {
			debug.Logf("index of %s unchanged (%d templates)\n", db.dir, db.count)
		}
		return nil
	}
	db.rebuild(files)
	return nil
}

// Rebuild rescans the directory and rebuilds the index unconditionally.
func (db *DB) Rebuild() error {
	files, err := db.scan()
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.rebuild(files)
	return nil
}

func (db *DB) rebuild(files []string) {
	if debug.Index() {
		debug.Logf("rebuilding index of %s: %d templates\n", db.dir, len(files))
	}
	db.count = len(files)
	db.byName = map[string][]string{}
	db.locs = map[string]bool{}
	for _, loc := range files {
		name := BareName(loc)
		db.byName[name] = append(db.byName[name], loc)
		db.locs[loc] = true
	}
	for loc, root := range db.loaded {
		if db.locs[loc] {
			continue
		}
		if db.dirty[loc] {
			db.log.Warn("dropping uncommitted template whose file is gone", "location", loc)
			delete(db.dirty, loc)
		}
		delete(db.owners, root.Graph())
		delete(db.loaded, loc)
	}
}

func (db *DB) scan() ([]string, error) {
	var res []string
	err := filepath.WalkDir(db.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsTemplateFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(db.dir, p)
		if err != nil {
			return err
		}
		res = append(res, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", db.dir, err)
	}
	slices.Sort(res)
	return res, nil
}

// Lookup returns the sorted locations of the templates whose bare name is
// name.
func (db *DB) Lookup(name string) []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.byName[name])
}

// Locations returns every indexed location, sorted.
func (db *DB) Locations() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	res := make([]string, 0, len(db.locs))
	for loc := range db.locs {
		res = append(res, loc)
	}
	slices.Sort(res)
	return res
}

// Load returns the root of the template at loc, decoding it on first use.
func (db *DB) Load(loc string) (*graph.Node, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.locs[loc] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, loc)
	}
	if root := db.loaded[loc]; root != nil {
		return root, nil
	}
	f, err := os.Open(db.file(loc))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	root, err := store.Decode(f, store.Logger(db.log))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", loc, err)
	}
	if debug.Index() {
		debug.Logf("loaded %s (%d nodes)\n", loc, root.Graph().Len())
	}
	db.loaded[loc] = root
	db.owners[root.Graph()] = loc
	return root, nil
}

// Location returns the location of the loaded template graph holding n.
func (db *DB) Location(n *graph.Node) (string, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	loc, ok := db.owners[n.Graph()]
	return loc, ok
}

// MarkDirty records that the template graph holding root was modified and
// should be committed.
func (db *DB) MarkDirty(root *graph.Node) {
	db.mu.Lock()
	defer db.mu.Unlock()
	loc, ok := db.owners[root.Graph()]
	if !ok {
		db.log.Warn("marking a graph not loaded from the index", "root", root.Name)
		return
	}
	db.dirty[loc] = true
}

// Dirty reports whether some template has uncommitted modifications.
func (db *DB) Dirty() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.dirty) != 0
}

// Commit writes every modified template back to its file. Templates that
// fail to be written stay dirty.
func (db *DB) Commit() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	locs := make([]string, 0, len(db.dirty))
	for loc := range db.dirty {
		locs = append(locs, loc)
	}
	slices.Sort(locs)
	var errs []error
	for _, loc := range locs {
		if err := db.write(loc, db.loaded[loc]); err != nil {
			errs = append(errs, fmt.Errorf("committing %s: %w", loc, err))
			continue
		}
		db.log.Debug("committed template", "location", loc)
		delete(db.dirty, loc)
	}
	return errors.Join(errs...)
}

func (db *DB) write(loc string, root *graph.Node) error {
	d, err := store.Marshal(root, store.Logger(db.log))
	if err != nil {
		return err
	}
	p := db.file(loc)
	tmp, err := os.CreateTemp(filepath.Dir(p), ".prefab-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(d); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (db *DB) file(loc string) string {
	return filepath.Join(db.dir, filepath.FromSlash(loc))
}
