// Package world discovers LV2 bundles on a search path and registers the
// plugins they describe.
//
// Every bundle directory matching *.lv2 that contains a manifest.ttl is
// scanned. Each manifest subject typed lv2:Plugin becomes one lv2.Plugin;
// its data graph (the manifest merged with the plugin's rdfs:seeAlso
// files) is handed to a lv2.Loader so the resolver can query it.
package world

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/lv2meta/lv2meta/internal/rdf"
	"github.com/lv2meta/lv2meta/internal/rdf/turtle"
	"github.com/lv2meta/lv2meta/pkg/lv2"
)

// ManifestPattern matches bundle manifests relative to a search directory
const ManifestPattern = "*.lv2/manifest.ttl"

// World holds the plugins discovered on a search path, indexed by URI
type World struct {
	mu      sync.RWMutex
	plugins map[string]*lv2.Plugin
	sorted  []*lv2.Plugin
	bundles []string
}

// New returns an empty world
func New() *World {
	return &World{plugins: make(map[string]*lv2.Plugin)}
}

// Register adds a plugin. A plugin whose URI is already registered is
// ignored and false is returned.
func (w *World) Register(p *lv2.Plugin) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.plugins[p.URI()]; exists {
		return false
	}
	w.plugins[p.URI()] = p

	// keep the sorted view current
	i := sort.Search(len(w.sorted), func(i int) bool { return w.sorted[i].URI() >= p.URI() })
	w.sorted = append(w.sorted, nil)
	copy(w.sorted[i+1:], w.sorted[i:])
	w.sorted[i] = p
	return true
}

// Plugins returns all plugins ordered by URI
func (w *World) Plugins() []*lv2.Plugin {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*lv2.Plugin, len(w.sorted))
	copy(out, w.sorted)
	return out
}

// Plugin looks up a plugin by URI
func (w *World) Plugin(uri string) (*lv2.Plugin, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.plugins[uri]
	return p, ok
}

// Len returns the number of registered plugins
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.plugins)
}

// Bundles returns the bundle directories that contributed plugins
func (w *World) Bundles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, len(w.bundles))
	copy(out, w.bundles)
	return out
}

// SearchPath splits a list of directories separated by the OS path list
// separator. A leading "~" expands to the home directory and empty entries
// are dropped.
func SearchPath(value string) []string {
	home, _ := os.UserHomeDir()

	dirs := make([]string, 0)
	for _, dir := range filepath.SplitList(value) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if home != "" && (dir == "~" || strings.HasPrefix(dir, "~/")) {
			dir = filepath.Join(home, dir[1:])
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// Load scans every directory of searchPath for bundles, feeds each plugin's
// data graph to loader and returns the resulting world. Missing search
// directories and malformed bundles are logged and skipped; only context
// cancellation aborts the scan.
func Load(ctx context.Context, searchPath []string, loader lv2.Loader, logger *zap.Logger) (*World, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	w := New()
	for _, dir := range searchPath {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logger.Debug("skipping search directory", zap.String("dir", dir))
			continue
		}

		manifests, err := doublestar.Glob(os.DirFS(dir), ManifestPattern)
		if err != nil {
			logger.Warn("failed to scan search directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		sort.Strings(manifests)

		for _, rel := range manifests {
			bundle := filepath.Join(dir, filepath.Dir(filepath.FromSlash(rel)))
			plugins, err := loadBundle(ctx, bundle, loader)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("skipping bundle", zap.String("bundle", bundle), zap.Error(err))
				continue
			}

			w.mu.Lock()
			w.bundles = append(w.bundles, bundle)
			w.mu.Unlock()

			for _, p := range plugins {
				if !w.Register(p) {
					logger.Warn("duplicate plugin ignored",
						zap.String("plugin", p.URI()),
						zap.String("bundle", bundle))
					continue
				}
				logger.Debug("plugin discovered",
					zap.String("plugin", p.URI()),
					zap.String("data", p.DataURI()))
			}
		}
	}

	logger.Info("world loaded",
		zap.Int("bundles", len(w.Bundles())),
		zap.Int("plugins", w.Len()))
	return w, nil
}

// loadBundle parses one bundle's manifest and data files. Nothing is handed
// to the loader unless the whole bundle parses.
func loadBundle(ctx context.Context, dir string, loader lv2.Loader) ([]*lv2.Plugin, error) {
	manifestPath := filepath.Join(dir, "manifest.ttl")
	manifest, err := turtle.ParseFile(manifestPath)
	if err != nil {
		return nil, err
	}
	manifestURI := rdf.FileURI(manifestPath)
	bundleURI := rdf.DirURI(dir)

	g := rdf.NewGraph()
	g.AddAll(manifest.Triples)

	typePred := rdf.IRI(lv2.ExpandIRI(lv2.PredicateType))
	binaryPred := rdf.IRI(lv2.ExpandIRI(lv2.PredicateBinary))
	seeAlsoPred := rdf.IRI(lv2.ExpandIRI(lv2.PredicateSeeAlso))

	subjects := g.Subjects(typePred, rdf.IRI(lv2.ClassPlugin))
	if len(subjects) == 0 {
		return nil, fmt.Errorf("no plugins declared in %s", manifestPath)
	}

	parsed := map[string][]rdf.Triple{manifestURI: manifest.Triples}
	graphs := make(map[string][]rdf.Triple)
	merged := make(map[string]map[string]bool) // graph -> files already in it
	order := make([]string, 0)
	plugins := make([]*lv2.Plugin, 0, len(subjects))

	for _, subject := range subjects {
		if !subject.IsIRI() {
			continue
		}

		library := ""
		if bins := g.Objects(subject, binaryPred); len(bins) > 0 && bins[0].IsIRI() {
			library = bins[0].Value
		}

		dataURI := manifestURI
		files := []string{manifestURI}
		for _, also := range g.Objects(subject, seeAlsoPred) {
			if !also.IsIRI() {
				continue
			}
			if dataURI == manifestURI {
				dataURI = also.Value
			}
			files = append(files, also.Value)
		}

		if _, seen := merged[dataURI]; !seen {
			merged[dataURI] = make(map[string]bool)
			order = append(order, dataURI)
		}
		// plugins sharing a data file share its graph, which holds every
		// file any of them lists
		for _, file := range files {
			if merged[dataURI][file] {
				continue
			}
			triples, err := parseData(file, parsed)
			if err != nil {
				return nil, err
			}
			graphs[dataURI] = append(graphs[dataURI], triples...)
			merged[dataURI][file] = true
		}

		p, err := lv2.NewPlugin(subject.Value, bundleURI, dataURI, library)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}

	for _, name := range order {
		if err := loader.Load(ctx, name, graphs[name]); err != nil {
			return nil, err
		}
	}
	return plugins, nil
}

// parseData returns the triples of a data file, parsing each file once per
// bundle
func parseData(uri string, parsed map[string][]rdf.Triple) ([]rdf.Triple, error) {
	if triples, ok := parsed[uri]; ok {
		return triples, nil
	}
	path, ok := lv2.LocalPath(uri)
	if !ok {
		return nil, fmt.Errorf("data file <%s> is not a local file", uri)
	}
	doc, err := turtle.ParseFile(path)
	if err != nil {
		return nil, err
	}
	parsed[uri] = doc.Triples
	return doc.Triples, nil
}
