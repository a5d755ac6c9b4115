// Package config loads linkrank runtime settings from .linkrank.yaml,
// LINKRANK_* environment variables and bound CLI flags via viper.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/papapumpkin/linkrank/internal/rank"
)

// ErrInvalidConfig indicates a setting outside its accepted values.
var ErrInvalidConfig = errors.New("invalid config")

// Grouping modes for the edge-list builder.
const (
	GroupingMerge      = "merge"
	GroupingContiguous = "contiguous"
)

// Config holds all runtime configuration for a ranking run.
type Config struct {
	Method   string `mapstructure:"method"`
	Repeats  int    `mapstructure:"repeats"`
	Steps    int    `mapstructure:"steps"`
	Number   int    `mapstructure:"number"`
	Seed     uint64 `mapstructure:"seed"` // 0 picks a time-based seed
	Workers  int    `mapstructure:"workers"`
	DeadEnd  string `mapstructure:"dead_end"`
	Dangling string `mapstructure:"dangling"`
	Grouping string `mapstructure:"grouping"`

	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	TelemetryPath string `mapstructure:"telemetry_path"`
	ReportPath    string `mapstructure:"report_path"`
}

// SetDefaults registers built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("method", string(rank.MethodStochastic))
	viper.SetDefault("repeats", 1_000_000)
	viper.SetDefault("steps", 100)
	viper.SetDefault("number", 20)
	viper.SetDefault("seed", 0)
	viper.SetDefault("workers", 1)
	viper.SetDefault("dead_end", string(rank.DeadEndFail))
	viper.SetDefault("dangling", string(rank.DanglingDrop))
	viper.SetDefault("grouping", GroupingMerge)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("report_path", "")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks names and counts. Range checks on repeats and steps that
// depend on the method are left to the rankers.
func (c Config) Validate() error {
	if !rank.Method(c.Method).Valid() {
		return fmt.Errorf("%w: method %q (want stochastic or distribution)", ErrInvalidConfig, c.Method)
	}
	if _, err := rank.ParseDeadEndPolicy(c.DeadEnd); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := rank.ParseDanglingPolicy(c.Dangling); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Grouping {
	case GroupingMerge, GroupingContiguous:
	default:
		return fmt.Errorf("%w: grouping %q (want merge or contiguous)", ErrInvalidConfig, c.Grouping)
	}
	if c.Number < 0 {
		return fmt.Errorf("%w: number = %d, must be >= 0", ErrInvalidConfig, c.Number)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers = %d, must be >= 0", ErrInvalidConfig, c.Workers)
	}
	return nil
}
