package async

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/utils/errors"
)

// DefaultTimeout bounds a dispatched handler once it is detached from the
// caller's context
const DefaultTimeout = 30 * time.Second

var inflight sync.WaitGroup

// Dispatch executes a handler function asynchronously with proper context and panic recovery.
// The handler context keeps the caller's values (logger etc.) but not its
// cancellation. If sync mode is enabled in the context, the handler runs synchronously.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	if isSyncMode(ctx) {
		if err := handler(ctx); err != nil {
			errors.Handle(ctx, err)
		}
		return
	}

	newCtx, cancel := newBackgroundContext(ctx)

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				err := goerr.New("panic in async handler",
					goerr.V("recover", r),
					goerr.V("stack", string(stack)),
				)
				errors.Handle(newCtx, err)
			}
		}()

		if err := handler(newCtx); err != nil {
			errors.Handle(newCtx, err)
		}
	}()
}

// Wait blocks until every dispatched handler returned or ctx is done.
// Short lived processes call it before exiting.
func Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "gave up waiting for async handlers")
	}
}

func newBackgroundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), DefaultTimeout)
}
