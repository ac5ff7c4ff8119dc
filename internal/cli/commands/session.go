package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lv2meta/lv2meta/internal/cli/config"
	"github.com/lv2meta/lv2meta/internal/engine"
	"github.com/lv2meta/lv2meta/internal/logging"
	"github.com/lv2meta/lv2meta/internal/world"
	"github.com/lv2meta/lv2meta/pkg/lv2"
)

// session is everything a command needs to answer plugin queries
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    engine.Store
	world    *world.World
	resolver *lv2.Resolver
}

// openSession loads the configuration, applies command line overrides,
// opens the engine and scans the search path
func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("lv2-path") {
		cfg.LV2Path = lv2Path
	}
	if flags.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("no-color") {
		cfg.Output.NoColor = noColor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Output.NoColor {
		color.NoColor = true
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := engine.Open(ctx, cfg.EngineOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s engine: %w", cfg.Engine.Kind, err)
	}

	w, err := world.Load(ctx, world.SearchPath(cfg.LV2Path), store, logger.Named("world"))
	if err != nil {
		store.Close()
		return nil, err
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		world:    w,
		resolver: lv2.NewResolver(store, lv2.WithLogger(logger.Named("resolver"))),
	}, nil
}

func (s *session) noColor() bool {
	return s.cfg.Output.NoColor
}

func (s *session) json() bool {
	return s.cfg.Output.Format == config.FormatJSON
}

// Close releases the engine and flushes the logger
func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.store.Close()
}
