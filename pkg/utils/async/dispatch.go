package async

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/utils/logging"
	"github.com/panjf2000/ants/v2"
)

// Dispatcher runs handlers on a shared worker pool, detached from the
// request lifecycle that triggered them. A dispatched handler lives only in
// memory: a process restart loses in-flight work.
type Dispatcher struct {
	pool *ants.Pool
}

// NewDispatcher creates a dispatcher backed by a pool of the given size.
func NewDispatcher(size int) (*Dispatcher, error) {
	if size < 1 {
		size = 1
	}

	pool, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create worker pool", goerr.V("size", size))
	}

	return &Dispatcher{pool: pool}, nil
}

// Dispatch submits a handler to the pool and returns immediately. The handler
// gets a fresh background context that preserves the caller's logger, so it
// outlives the originating HTTP request. Errors and panics are logged here and
// never propagate back to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	run := func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
				sentry.CurrentHub().Recover(r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
			sentry.CaptureException(err)
		}
	}

	if err := d.pool.Submit(run); err != nil {
		// Pool is released or saturated beyond its queue. Fall back to a bare
		// goroutine rather than dropping the work.
		logging.From(ctx).Warn("worker pool submit failed, running inline goroutine", "error", err)
		go run()
	}
}

// Release shuts down the worker pool. Pending tasks are discarded.
func (d *Dispatcher) Release() {
	d.pool.Release()
}
