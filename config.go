package threadpool

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/marcustut/threadpool/metrics"
)

// Strategy selects the concurrent-access discipline of the worker table.
type Strategy int

const (
	// StrategyLocked guards the whole table with a single RWMutex.
	// Mutations are totally ordered; two Spawn calls for different ids
	// cannot proceed concurrently. Default.
	StrategyLocked Strategy = iota

	// StrategySharded splits the table across independently locked shards,
	// providing per-key atomicity without a table-wide lock. Spawn/stop on
	// distinct ids proceed in parallel at a small per-operation cost.
	StrategySharded
)

const defaultShards uint = 32

// config holds Pool configuration.
type config struct {
	// Strategy selects the table backing the registry.
	// Default: StrategyLocked.
	Strategy Strategy

	// Shards is the shard count used by StrategySharded, rounded up to a
	// power of two. Ignored by StrategyLocked.
	// Default: 32.
	Shards uint

	// StopTimeout bounds how long Close waits for each worker to exit.
	// Zero waits forever.
	// Default: 0.
	StopTimeout time.Duration

	// Logger receives informational events at spawn/stop and a warning at
	// teardown. Nil disables logging; correctness never depends on it.
	Logger *slog.Logger

	// Metrics constructs the pool's instruments.
	// Default: metrics.NewNoopProvider().
	Metrics metrics.Provider

	// CloneState holds an optional per-spawn state clone hook (stored as
	// any due to non-generic config; configured via WithCloneState).
	// When nil, workers receive a plain value copy of the state.
	CloneState any
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Strategy: StrategyLocked,
		Shards:   defaultShards,
		Metrics:  metrics.NewNoopProvider(),
	}
}

// validateConfig performs lightweight invariants checks after all options
// have been applied.
func validateConfig(cfg *config) error {
	if cfg.Strategy != StrategyLocked && cfg.Strategy != StrategySharded {
		return errorc.With(
			ErrInvalidConfig,
			errorc.String("", fmt.Sprintf("unknown strategy %d", cfg.Strategy)),
		)
	}
	if cfg.Shards == 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("", "shard count must be > 0"))
	}
	if cfg.Metrics == nil {
		return errorc.With(ErrInvalidConfig, errorc.String("", "metrics provider must not be nil"))
	}
	return nil
}

// Config is the file-loadable subset of the pool configuration. Apply it
// with WithConfig; explicit options later in the chain win.
type Config struct {
	// Strategy is "locked" (default) or "sharded".
	Strategy string `yaml:"strategy" json:"strategy"`

	// Shards is the shard count for the sharded strategy.
	Shards uint `yaml:"shards" json:"shards"`

	// StopTimeout bounds each join during Close, in time.ParseDuration
	// syntax (e.g. "5s"). Empty waits forever.
	StopTimeout string `yaml:"stop_timeout" json:"stop_timeout"`
}

// ConfigFromFile loads a Config from a file, auto-detecting the format by
// extension. Supported extensions: .yaml, .yml, .json
func ConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ConfigFromYAML(data)
	case ".json":
		return ConfigFromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
	}
}

// ConfigFromYAML parses YAML data into a Config.
func ConfigFromYAML(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return c, nil
}

// ConfigFromJSON parses JSON data into a Config.
func ConfigFromJSON(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return c, nil
}

// apply merges the loaded values into cfg.
func (c Config) apply(cfg *config) error {
	switch strings.ToLower(c.Strategy) {
	case "", "locked":
		cfg.Strategy = StrategyLocked
	case "sharded":
		cfg.Strategy = StrategySharded
	default:
		return errorc.With(ErrInvalidConfig, errorc.String("strategy", c.Strategy))
	}

	if c.Shards > 0 {
		cfg.Shards = c.Shards
	}

	if c.StopTimeout != "" {
		d, err := time.ParseDuration(c.StopTimeout)
		if err != nil {
			return errorc.With(ErrInvalidConfig, errorc.String("stop_timeout", c.StopTimeout))
		}
		cfg.StopTimeout = d
	}

	return nil
}
