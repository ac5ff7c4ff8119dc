package lv2

import (
	"context"

	"github.com/lv2meta/lv2meta/internal/rdf"
)

// Engine executes query text against a named graph and returns the
// single-column result rows in order. IRIs are returned without angle
// brackets and literals as their lexical form.
type Engine interface {
	Execute(ctx context.Context, query string, graph string) ([]string, error)
}

// Loader ingests the triples of one named graph, replacing whatever the
// graph held before
type Loader interface {
	Load(ctx context.Context, graph string, triples []rdf.Triple) error
}

// EngineFunc adapts a function to the Engine interface
type EngineFunc func(ctx context.Context, query string, graph string) ([]string, error)

// Execute calls f
func (f EngineFunc) Execute(ctx context.Context, query string, graph string) ([]string, error) {
	return f(ctx, query, graph)
}
