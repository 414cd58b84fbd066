package threadpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/marcustut/threadpool/metrics"
)

// Pool is a keyed registry of long-running workers. It tracks which workers
// are live, clones its shared state into each one at spawn time, and retires
// them with a cooperative shutdown signal followed by a blocking join.
// Methods are safe for concurrent use.
//
// The pool never terminates a goroutine forcibly: worker bodies must watch
// the shutdown channel handed to their Factory and exit promptly once it is
// closed.
type Pool[ID comparable, State, R any] struct {
	config *config

	state State
	clone func(State) State

	workers table[ID, *worker[ID, R]]

	logger      *slog.Logger
	instruments poolInstruments

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

type poolInstruments struct {
	spawned     metrics.Counter
	stopped     metrics.Counter
	active      metrics.UpDownCounter
	stopSeconds metrics.Histogram
}

func newPoolInstruments(p metrics.Provider) poolInstruments {
	return poolInstruments{
		spawned: p.Counter("threadpool.workers.spawned",
			metrics.WithDescription("Workers started by Spawn"),
			metrics.WithUnit("1"),
		),
		stopped: p.Counter("threadpool.workers.stopped",
			metrics.WithDescription("Workers stopped and joined cleanly"),
			metrics.WithUnit("1"),
		),
		active: p.UpDownCounter("threadpool.workers.active",
			metrics.WithDescription("Workers currently registered"),
			metrics.WithUnit("1"),
		),
		stopSeconds: p.Histogram("threadpool.stop.seconds",
			metrics.WithDescription("Latency of signal-then-join per worker"),
			metrics.WithUnit("s"),
		),
	}
}

// New builds an empty registry holding the given shared state.
// No goroutines are started.
func New[ID comparable, State, R any](state State, opts ...Option) (*Pool[ID, State, R], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	var workers table[ID, *worker[ID, R]]
	switch cfg.Strategy {
	case StrategySharded:
		workers = newShardedTable[ID, *worker[ID, R]](cfg.Shards)
	default:
		workers = newLockedTable[ID, *worker[ID, R]]()
	}

	clone := func(s State) State { return s }
	if cfg.CloneState != nil {
		fn, ok := cfg.CloneState.(func(State) State)
		if !ok {
			return nil, errorc.With(
				ErrInvalidConfig,
				errorc.String("", "WithCloneState function does not match the pool state type"),
			)
		}
		clone = fn
	}

	return &Pool[ID, State, R]{
		config:      &cfg,
		state:       state,
		clone:       clone,
		workers:     workers,
		logger:      cfg.Logger,
		instruments: newPoolInstruments(cfg.Metrics),
	}, nil
}

// Spawn registers and starts a new worker under id. The factory is invoked
// exactly once, while the pool holds per-key exclusivity for id, with the
// worker's identity, its own copy of the shared state, and the shutdown
// channel it must watch.
//
// It fails with ErrWorkerExists (and the factory is never invoked) when id
// is already occupied, and with ErrPoolClosed after Close.
func (p *Pool[ID, State, R]) Spawn(id ID, factory Factory[ID, State, R]) error {
	if factory == nil {
		return errorc.With(ErrNilHandle, errorc.String("id", fmt.Sprintf("%v", id)))
	}
	if p.closed.Load() {
		return ErrPoolClosed
	}

	w, inserted := p.workers.insert(id, func() *worker[ID, R] {
		return newWorker(id, p.clone(p.state), factory)
	})
	if !inserted {
		return errorc.With(ErrWorkerExists, errorc.String("id", fmt.Sprintf("%v", id)))
	}
	if w.handle == nil {
		p.workers.remove(id)
		return errorc.With(ErrNilHandle, errorc.String("id", fmt.Sprintf("%v", id)))
	}

	p.instruments.spawned.Add(1)
	p.instruments.active.Add(1)

	// Close may have drained the table before this entry landed. Either the
	// drain loop already removed it, or it is reclaimed here; a worker never
	// outlives a closed pool.
	if p.closed.Load() {
		if w, ok := p.workers.remove(id); ok {
			p.instruments.active.Add(-1)
			_, _ = w.stop(context.Background())
		}
		return ErrPoolClosed
	}

	p.logEvent(slog.LevelInfo, "spawned worker", id)
	return nil
}

// Stop removes the worker registered under id, signals it to shut down, and
// blocks until its goroutine exits, returning the goroutine's final value.
// The wait is unbounded; use StopContext to bound it.
//
// It fails with ErrWorkerNotFound, with no side effects, when id is absent,
// and with ErrStopWorker when the goroutine panicked instead of returning.
// Either way the entry is already removed and the operation is not retried.
func (p *Pool[ID, State, R]) Stop(id ID) (R, error) {
	return p.StopContext(context.Background(), id)
}

// StopContext is Stop with a bounded wait. If ctx is done before the worker
// exits, ErrStopTimeout is returned; the entry stays removed and the
// goroutine is left running detached: it was signalled and is contractually
// obliged to exit on its own.
func (p *Pool[ID, State, R]) StopContext(ctx context.Context, id ID) (R, error) {
	w, ok := p.workers.remove(id)
	if !ok {
		var zero R
		return zero, errorc.With(ErrWorkerNotFound, errorc.String("id", fmt.Sprintf("%v", id)))
	}

	p.logEvent(slog.LevelInfo, "stopping worker", id)
	p.instruments.active.Add(-1)

	result, err := p.joinWorker(ctx, w)
	if err != nil {
		return result, err
	}

	p.logEvent(slog.LevelInfo, "worker stopped", id)
	return result, nil
}

// IDs returns an unordered snapshot of the identities of live workers.
func (p *Pool[ID, State, R]) IDs() []ID { return p.workers.ids() }

// Size returns the number of live workers.
func (p *Pool[ID, State, R]) Size() int { return p.workers.size() }

// Close stops and joins every remaining worker, then refuses further Spawn
// calls with ErrPoolClosed.
//
// Semantics:
//   - Idempotent and safe for concurrent use; later calls return the first
//     result.
//   - Every remaining worker is stopped even when some fail; the individual
//     failures are aggregated with errors.Join into the returned error.
//   - WithStopTimeout bounds the wait per worker; a worker still running at
//     its deadline is abandoned and reported, never silently leaked.
func (p *Pool[ID, State, R]) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)

		if p.logger != nil {
			p.logger.Warn("closing pool, stopping remaining workers",
				slog.Int("workers", p.workers.size()),
			)
		}

		var errs []error
		// Re-snapshot until empty: a Spawn racing Close may land an entry
		// after a snapshot was taken.
		for {
			ids := p.workers.ids()
			if len(ids) == 0 {
				break
			}
			for _, id := range ids {
				w, ok := p.workers.remove(id)
				if !ok {
					continue
				}
				p.instruments.active.Add(-1)
				if _, err := p.stopForClose(w); err != nil {
					errs = append(errs, err)
				}
			}
		}

		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}

// stopForClose joins one worker during teardown, bounded by StopTimeout
// when configured.
func (p *Pool[ID, State, R]) stopForClose(w *worker[ID, R]) (R, error) {
	ctx := context.Background()
	if p.config.StopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.StopTimeout)
		defer cancel()
	}
	return p.joinWorker(ctx, w)
}

// joinWorker runs the worker stop protocol and records its latency.
func (p *Pool[ID, State, R]) joinWorker(ctx context.Context, w *worker[ID, R]) (R, error) {
	start := time.Now()
	result, err := w.stop(ctx)
	p.instruments.stopSeconds.Record(time.Since(start).Seconds())
	if err == nil {
		p.instruments.stopped.Add(1)
	}
	return result, err
}

func (p *Pool[ID, State, R]) logEvent(level slog.Level, msg string, id ID) {
	if p.logger == nil {
		return
	}
	p.logger.Log(context.Background(), level, msg,
		slog.String("worker_id", fmt.Sprintf("%v", id)),
	)
}
