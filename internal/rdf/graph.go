package rdf

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Graph is an insertion-ordered set of triples with subject and predicate
// indexes.
//
// Thread Safety: Graph is NOT safe for concurrent mutation. Concurrent reads
// are safe once loading has finished; Dataset provides the locking used by
// the engines.
type Graph struct {
	triples     []Triple
	seen        map[string]struct{}
	bySubject   map[string][]int
	byPredicate map[string][]int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		triples:     make([]Triple, 0),
		seen:        make(map[string]struct{}),
		bySubject:   make(map[string][]int),
		byPredicate: make(map[string][]int),
	}
}

// Add inserts a triple. Duplicates are ignored; returns true if the triple
// was new.
func (g *Graph) Add(t Triple) bool {
	key := t.String()
	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = struct{}{}

	idx := len(g.triples)
	g.triples = append(g.triples, t)
	sk := t.Subject.String()
	pk := t.Predicate.String()
	g.bySubject[sk] = append(g.bySubject[sk], idx)
	g.byPredicate[pk] = append(g.byPredicate[pk], idx)
	return true
}

// AddAll inserts every triple in order
func (g *Graph) AddAll(triples []Triple) {
	for _, t := range triples {
		g.Add(t)
	}
}

// Len returns the number of triples
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns a copy of all triples in insertion order
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Match returns the triples matching the given pattern in insertion order.
// A nil term is a wildcard.
func (g *Graph) Match(s, p, o *Term) []Triple {
	var candidates []int
	switch {
	case s != nil:
		candidates = g.bySubject[s.String()]
	case p != nil:
		candidates = g.byPredicate[p.String()]
	default:
		out := make([]Triple, 0, len(g.triples))
		for _, t := range g.triples {
			if o == nil || t.Object.Equal(*o) {
				out = append(out, t)
			}
		}
		return out
	}

	out := make([]Triple, 0, len(candidates))
	for _, idx := range candidates {
		t := g.triples[idx]
		if s != nil && !t.Subject.Equal(*s) {
			continue
		}
		if p != nil && !t.Predicate.Equal(*p) {
			continue
		}
		if o != nil && !t.Object.Equal(*o) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Objects returns the objects of (s, p, ?) in insertion order
func (g *Graph) Objects(s, p Term) []Term {
	matches := g.Match(&s, &p, nil)
	out := make([]Term, 0, len(matches))
	for _, t := range matches {
		out = append(out, t.Object)
	}
	return out
}

// Subjects returns the subjects of (?, p, o) in insertion order
func (g *Graph) Subjects(p, o Term) []Term {
	matches := g.Match(nil, &p, &o)
	out := make([]Term, 0, len(matches))
	for _, t := range matches {
		out = append(out, t.Subject)
	}
	return out
}

// Dataset is a thread-safe collection of named graphs
type Dataset struct {
	mu     sync.RWMutex
	graphs map[string]*Graph
}

// NewDataset creates an empty dataset
func NewDataset() *Dataset {
	return &Dataset{graphs: make(map[string]*Graph)}
}

// Load replaces the contents of the named graph with triples
func (d *Dataset) Load(ctx context.Context, name string, triples []Triple) error {
	if name == "" {
		return fmt.Errorf("graph name must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g := NewGraph()
	g.AddAll(triples)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.graphs[name] = g
	return nil
}

// Graph returns the named graph
func (d *Dataset) Graph(name string) (*Graph, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.graphs[name]
	return g, ok
}

// Names returns the graph names in sorted order
func (d *Dataset) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.graphs))
	for name := range d.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View runs fn with the named graph under a read lock
func (d *Dataset) View(name string, fn func(g *Graph) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.graphs[name]
	if !ok {
		return fmt.Errorf("unknown graph <%s>", name)
	}
	return fn(g)
}
