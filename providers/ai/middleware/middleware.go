package middleware

import (
	"context"

	"github.com/leofalp/flowlab/providers/ai"
)

// Middleware wraps a Completer with additional behavior. Middlewares compose
// with [Chain].
type Middleware func(next ai.Completer) ai.Completer

// completerFunc adapts a plain function to the ai.Completer interface.
type completerFunc func(ctx context.Context, request ai.Request) (string, error)

func (f completerFunc) Complete(ctx context.Context, request ai.Request) (string, error) {
	return f(ctx, request)
}

// Chain wraps completer with the given middlewares. The first middleware is
// the outermost wrapper: it runs first on the way in and last on the way out.
//
//	completer := middleware.Chain(provider,
//	    middleware.NewTimeoutMiddleware(60*time.Second),
//	    middleware.NewRetryMiddleware(middleware.RetryConfig{}),
//	)
//
// Here a request travels Timeout → Retry → provider, so the timeout bounds
// all retry attempts together.
func Chain(completer ai.Completer, middlewares ...Middleware) ai.Completer {
	wrapped := completer
	for index := len(middlewares) - 1; index >= 0; index-- {
		wrapped = middlewares[index](wrapped)
	}
	return wrapped
}
