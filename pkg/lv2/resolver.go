package lv2

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lv2meta/lv2meta/internal/sparql"
)

// Resolver translates (plugin, predicate) and (plugin, port, predicate)
// pairs into Values by building a query and handing it to the engine.
//
// A Resolver holds no per-plugin state; every call re-runs its query. It is
// safe for concurrent use when the engine is.
type Resolver struct {
	engine Engine
	logger *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger used for per-query debug output
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver backed by engine
func NewResolver(engine Engine, opts ...Option) *Resolver {
	r := &Resolver{
		engine: engine,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the objects of (plugin, predicate). No match is an empty
// collection, not an error.
func (r *Resolver) Resolve(ctx context.Context, p *Plugin, predicate string) (*Values, error) {
	return r.resolve(ctx, "Resolve", p, predicate, func(qc sparql.QueryContext) (*sparql.Query, error) {
		return sparql.Objects(qc, predicate)
	})
}

// ResolveViaListAndFilter selects the entity linked from the plugin by
// listPredicate whose lv2:index equals index, then returns that entity's
// objects of predicate.
func (r *Resolver) ResolveViaListAndFilter(ctx context.Context, p *Plugin, listPredicate string, index uint32, predicate string) (*Values, error) {
	if listPredicate == "" {
		return nil, contractViolation("ResolveViaListAndFilter", pluginURI(p), predicate, "empty list predicate")
	}
	return r.resolve(ctx, "ResolveViaListAndFilter", p, predicate, func(qc sparql.QueryContext) (*sparql.Query, error) {
		return sparql.ViaList(qc, listPredicate, PredicateIndex, int64(index), predicate)
	})
}

// CountMatches returns the number of distinct objects of predicate
func (r *Resolver) CountMatches(ctx context.Context, p *Plugin, predicate string) (int, error) {
	values, err := r.Resolve(ctx, p, predicate)
	if err != nil {
		return 0, err
	}
	return values.Size(), nil
}

func (r *Resolver) resolve(ctx context.Context, op string, p *Plugin, predicate string, build func(sparql.QueryContext) (*sparql.Query, error)) (*Values, error) {
	if predicate == "" {
		return nil, contractViolation(op, pluginURI(p), predicate, "empty predicate")
	}
	return r.run(ctx, op, p, predicate, build)
}

// run builds a query for p, executes it and wraps the rows
func (r *Resolver) run(ctx context.Context, op string, p *Plugin, predicate string, build func(sparql.QueryContext) (*sparql.Query, error)) (*Values, error) {
	if p == nil {
		return nil, contractViolation(op, "", predicate, "nil plugin")
	}

	q, err := build(p.QueryContext())
	if err != nil {
		return nil, contractViolation(op, p.URI(), predicate, "%v", err)
	}

	start := time.Now()
	rows, err := r.engine.Execute(ctx, q.String(), p.DataURI())
	elapsed := time.Since(start)
	if err != nil {
		r.logger.Debug("query failed",
			zap.String("op", op),
			zap.String("plugin", p.URI()),
			zap.String("predicate", predicate),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, engineFailure(op, p.URI(), predicate, err)
	}

	r.logger.Debug("query resolved",
		zap.String("op", op),
		zap.String("plugin", p.URI()),
		zap.String("predicate", predicate),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", elapsed),
	)
	return NewValues(rows...), nil
}

func pluginURI(p *Plugin) string {
	if p == nil {
		return ""
	}
	return p.URI()
}
