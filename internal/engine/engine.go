// Package engine selects and opens the query engine that backs plugin
// metadata resolution.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lv2meta/lv2meta/internal/engine/memory"
	"github.com/lv2meta/lv2meta/internal/engine/sqlstore"
	"github.com/lv2meta/lv2meta/pkg/lv2"
)

// Supported engine kinds
const (
	KindMemory   = "memory"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Kinds lists the accepted values of Config.Kind
var Kinds = []string{KindMemory, KindSQLite, KindPostgres}

// Config selects an engine
type Config struct {
	Kind string
	DSN  string
}

// Store is a loadable query engine
type Store interface {
	lv2.Engine
	lv2.Loader
	Close() error
}

var (
	_ Store = (*memory.Engine)(nil)
	_ Store = (*sqlstore.Store)(nil)
)

// Open creates the engine described by cfg
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Kind {
	case "", KindMemory:
		logger.Debug("using in-memory engine")
		return memory.New(logger.Named("memory")), nil
	case KindSQLite, KindPostgres:
		dialect, err := sqlstore.ParseDialect(cfg.Kind)
		if err != nil {
			return nil, err
		}
		if cfg.DSN == "" {
			return nil, fmt.Errorf("engine %q requires a DSN", cfg.Kind)
		}
		logger.Debug("opening SQL engine", zap.String("dialect", dialect.String()))
		return sqlstore.Open(ctx, dialect, cfg.DSN, logger.Named("sqlstore"))
	default:
		return nil, fmt.Errorf("unknown engine kind %q (expected one of %v)", cfg.Kind, Kinds)
	}
}
