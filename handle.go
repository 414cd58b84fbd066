package threadpool

import (
	"context"
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Handle represents a single running goroutine that eventually yields a
// value of type R. Obtain one with Go; factories hand it back to the pool,
// which joins it during Stop or Close.
type Handle[R any] struct {
	done       chan struct{}
	result     R
	panicked   bool
	panicValue any
}

// Go starts fn on a new goroutine and returns a Handle to join it.
// A panic inside fn is recovered and surfaced by Join as ErrWorkerPanicked.
func Go[R any](fn func() R) *Handle[R] {
	h := &Handle[R]{done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.panicked = true
				h.panicValue = r
			}
		}()

		h.result = fn()
	}()

	return h
}

// Join blocks until the goroutine exits and returns its value.
// It returns ErrWorkerPanicked (with the recovered value attached) if the
// goroutine panicked instead of returning.
func (h *Handle[R]) Join() (R, error) {
	return h.JoinContext(context.Background())
}

// JoinContext is Join with a bounded wait. If ctx is done before the
// goroutine exits, the zero value and ctx.Err() are returned; the goroutine
// keeps running and the Handle remains joinable.
func (h *Handle[R]) JoinContext(ctx context.Context) (R, error) {
	select {
	case <-h.done:
		if h.panicked {
			var zero R
			return zero, errorc.With(
				ErrWorkerPanicked,
				errorc.String("panic", fmt.Sprint(h.panicValue)),
			)
		}
		return h.result, nil

	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the goroutine has exited.
func (h *Handle[R]) Done() <-chan struct{} { return h.done }
