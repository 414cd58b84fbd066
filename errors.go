package threadpool

import "errors"

const Namespace = "threadpool"

var (
	ErrWorkerExists = errors.New(
		Namespace + ": worker with this id is already running",
	)
	ErrWorkerNotFound = errors.New(Namespace + ": worker not found")
	ErrStopWorker     = errors.New(Namespace + ": failed to stop worker")
	ErrStopTimeout    = errors.New(
		Namespace + ": worker did not stop before the context was done",
	)
	ErrShutdownSignal = errors.New(
		Namespace + ": shutdown signal was already delivered to worker",
	)
	ErrWorkerPanicked = errors.New(Namespace + ": worker goroutine panicked")
	ErrNilHandle      = errors.New(Namespace + ": factory did not return a handle")
	ErrPoolClosed     = errors.New(Namespace + ": pool is closed")
	ErrInvalidConfig  = errors.New(Namespace + ": invalid configuration")
)
