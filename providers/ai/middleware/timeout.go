package middleware

import (
	"context"
	"time"

	"github.com/leofalp/flowlab/providers/ai"
)

// NewTimeoutMiddleware creates a Middleware that enforces a per-request
// deadline via context.WithTimeout, ensuring that a stalled provider call
// does not block the caller indefinitely.
//
// If the caller supplies a context that already has a shorter deadline, that
// shorter deadline wins as per normal context semantics.
func NewTimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next ai.Completer) ai.Completer {
		return completerFunc(func(ctx context.Context, request ai.Request) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next.Complete(ctx, request)
		})
	}
}
