package threadpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ygrebnov/errorc"
)

// Factory produces the running goroutine behind a worker. It is called once
// per Spawn with the worker's identity, its own copy of the pool state, and
// the receiving end of the shutdown signal. It must start the goroutine
// before returning and must return promptly: it runs while the pool holds
// per-key exclusivity for id.
//
// The started goroutine is contractually required to select on shutdown and
// exit promptly once it is closed; nothing in the pool can terminate a
// goroutine that ignores it.
type Factory[ID comparable, State, R any] func(id ID, state State, shutdown <-chan struct{}) *Handle[R]

// worker pairs one running goroutine with the means to ask it to stop.
// A worker is owned by exactly one pool entry and is consumed by stop.
type worker[ID comparable, R any] struct {
	id        ID
	handle    *Handle[R]
	shutdown  chan struct{}
	signalled atomic.Bool
}

func newWorker[ID comparable, State, R any](id ID, state State, factory Factory[ID, State, R]) *worker[ID, R] {
	shutdown := make(chan struct{})
	return &worker[ID, R]{
		id:       id,
		shutdown: shutdown,
		handle:   factory(id, state, shutdown),
	}
}

// stop delivers the shutdown signal and joins the goroutine. It is terminal:
// the worker must not be used afterwards.
//
// The signal is delivered by closing the shutdown channel, so first delivery
// cannot fail. If the worker was already signalled, the join is still
// attempted (the goroutine may have exited through another path) and
// ErrShutdownSignal is reported only when the join itself succeeds: a join
// failure is the more actionable error.
func (w *worker[ID, R]) stop(ctx context.Context) (R, error) {
	var signalErr error
	if w.signalled.CompareAndSwap(false, true) {
		close(w.shutdown)
	} else {
		signalErr = errorc.With(
			ErrShutdownSignal,
			errorc.String("id", fmt.Sprintf("%v", w.id)),
		)
	}

	result, err := w.handle.JoinContext(ctx)
	switch {
	case err == nil:
		return result, signalErr

	case errors.Is(err, ErrWorkerPanicked):
		return result, errorc.With(
			ErrStopWorker,
			errorc.String("id", fmt.Sprintf("%v", w.id)),
			errorc.String("cause", err.Error()),
		)

	default:
		// JoinContext gave up waiting; the goroutine keeps running detached.
		return result, errorc.With(
			ErrStopTimeout,
			errorc.String("id", fmt.Sprintf("%v", w.id)),
			errorc.String("cause", err.Error()),
		)
	}
}
