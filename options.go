package threadpool

import (
	"log/slog"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/marcustut/threadpool/metrics"
)

// Option configures a Pool. Use New(state, opts...) to construct one.
// Options return an error on invalid input instead of panicking.
type Option func(*config) error

// WithStrategy selects the table backing strategy (default StrategyLocked).
// Both strategies expose identical behavior; they differ only in internal
// contention characteristics.
func WithStrategy(s Strategy) Option {
	return func(cfg *config) error {
		if s != StrategyLocked && s != StrategySharded {
			return errorc.With(ErrInvalidConfig, errorc.String("", "unknown strategy"))
		}
		cfg.Strategy = s
		return nil
	}
}

// WithShards sets the shard count used by StrategySharded (must be > 0;
// rounded up to a power of two). Default: 32.
func WithShards(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithShards requires n > 0"))
		}
		cfg.Shards = n
		return nil
	}
}

// WithStopTimeout bounds how long Close waits for each remaining worker to
// exit. Zero (default) waits forever. A worker still running at the deadline
// is abandoned and reported in the aggregate Close error.
func WithStopTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithStopTimeout requires d >= 0"))
		}
		cfg.StopTimeout = d
		return nil
	}
}

// WithLogger makes the pool emit events at spawn, stop, and teardown to l.
// Nil (default) disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		cfg.Logger = l
		return nil
	}
}

// WithMetrics records pool instrumentation through p (default: no-op).
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithCloneState installs the hook producing each worker's own copy of the
// shared state at spawn time. Without it, workers receive a plain value copy;
// use this when State holds reference types that must not be shared.
// The State type parameter must match the pool's, checked at New.
func WithCloneState[State any](clone func(State) State) Option {
	return func(cfg *config) error {
		if clone == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithCloneState requires a non-nil function"))
		}
		cfg.CloneState = clone
		return nil
	}
}

// WithConfig merges a file-loaded Config into the options chain.
func WithConfig(c Config) Option {
	return func(cfg *config) error { return c.apply(cfg) }
}
