// Package memory implements an in-process query engine over named graphs
// held in memory.
package memory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lv2meta/lv2meta/internal/rdf"
	"github.com/lv2meta/lv2meta/internal/sparql"
)

// Engine evaluates queries against an rdf.Dataset. Graphs are loaded once
// before querying; concurrent queries are safe.
type Engine struct {
	data   *rdf.Dataset
	logger *zap.Logger
}

// New creates an empty engine
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		data:   rdf.NewDataset(),
		logger: logger,
	}
}

// Load replaces the named graph with triples
func (e *Engine) Load(ctx context.Context, graph string, triples []rdf.Triple) error {
	if err := e.data.Load(ctx, graph, triples); err != nil {
		return fmt.Errorf("failed to load graph <%s>: %w", graph, err)
	}
	e.logger.Debug("graph loaded", zap.String("graph", graph), zap.Int("triples", len(triples)))
	return nil
}

// Execute parses query and evaluates it against graph. The query's FROM
// clause must name the same graph.
func (e *Engine) Execute(ctx context.Context, query string, graph string) ([]string, error) {
	q, err := sparql.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}
	from, err := q.GraphIRI()
	if err != nil {
		return nil, err
	}
	if from != graph {
		return nil, fmt.Errorf("query targets graph <%s> but <%s> was requested", from, graph)
	}

	var terms []rdf.Term
	err = e.data.View(graph, func(g *rdf.Graph) error {
		var evalErr error
		terms, evalErr = sparql.Evaluate(ctx, q, g)
		return evalErr
	})
	if err != nil {
		return nil, err
	}

	rows := make([]string, len(terms))
	for i, t := range terms {
		rows[i] = t.Value
	}
	return rows, nil
}

// Graphs returns the names of the loaded graphs
func (e *Engine) Graphs() []string {
	return e.data.Names()
}

// Close releases nothing; it exists so the engine satisfies the same
// lifecycle as the SQL store.
func (e *Engine) Close() error {
	return nil
}
