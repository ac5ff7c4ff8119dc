package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/lv2meta/lv2meta/internal/engine"
)

// DefaultLV2Path is the search path used when LV2_PATH is unset
var DefaultLV2Path = strings.Join([]string{"~/.lv2", "/usr/local/lib/lv2", "/usr/lib/lv2"}, string(os.PathListSeparator))

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config represents the lv2meta configuration
type Config struct {
	LV2Path string       `mapstructure:"lv2_path"`
	Engine  EngineConfig `mapstructure:"engine"`
	Log     LogConfig    `mapstructure:"log"`
	Output  OutputConfig `mapstructure:"output"`
}

// EngineConfig selects the query engine
type EngineConfig struct {
	Kind string `mapstructure:"kind"`
	DSN  string `mapstructure:"dsn"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	NoColor bool   `mapstructure:"no_color"`
	Format  string `mapstructure:"format"`
}

// Load loads the configuration from lv2meta.yaml and the environment.
// An explicit file, when given, must exist.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("lv2_path", DefaultLV2Path)
	v.SetDefault("engine.kind", engine.KindMemory)
	v.SetDefault("engine.dsn", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", true)
	v.SetDefault("output.no_color", false)
	v.SetDefault("output.format", FormatTable)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("lv2meta")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "lv2meta"))
		}
	}

	// LV2_PATH is shared with other LV2 hosts; everything else is
	// namespaced, e.g. LV2META_ENGINE_KIND
	v.SetEnvPrefix("lv2meta")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("lv2_path", "LV2_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind LV2_PATH: %w", err)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Engine.Kind == engine.KindSQLite && config.Engine.DSN == "" {
		config.Engine.DSN = "file:lv2meta.db?cache=shared"
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// EngineOptions converts the engine section for engine.Open
func (c *Config) EngineOptions() engine.Config {
	return engine.Config{Kind: c.Engine.Kind, DSN: c.Engine.DSN}
}

// Validate checks a configuration after command line overrides
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	valid := false
	for _, kind := range engine.Kinds {
		if cfg.Engine.Kind == kind {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("engine.kind must be one of %s, got: %s", strings.Join(engine.Kinds, ", "), cfg.Engine.Kind)
	}
	if cfg.Engine.Kind == engine.KindPostgres && cfg.Engine.DSN == "" {
		return fmt.Errorf("engine.dsn is required for the postgres engine")
	}

	switch cfg.Output.Format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("output.format must be %q or %q, got: %s", FormatTable, FormatJSON, cfg.Output.Format)
	}
	return nil
}
