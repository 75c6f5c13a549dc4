// Package middleware provides composable wrappers around an [ai.Completer].
// Each middleware is constructed via a New* function and applied with
// [Chain].
//
// # Available Middleware
//
//   - [NewRetryMiddleware]: Retries failed provider calls with exponential
//     backoff and jitter. Useful for transient HTTP 429 / 5xx errors.
//
//   - [NewTimeoutMiddleware]: Adds a per-request deadline via
//     context.WithTimeout, ensuring that a stalled provider call does not
//     block a workflow run indefinitely.
//
//   - [NewLoggingMiddleware]: Logs every completion through an
//     observability.Provider, with three verbosity levels (Minimal,
//     Standard, Verbose).
//
// # Usage
//
//	completer := middleware.Chain(openai.NewProvider(),
//	    middleware.NewTimeoutMiddleware(60*time.Second),
//	    middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 3}),
//	    middleware.NewLoggingMiddleware(observer, middleware.LogLevelStandard),
//	)
//
// Middlewares execute outermost-first: the first entry in Chain is the
// outermost wrapper, meaning it runs first on the way in and last on the way
// out. In the example above, a request travels:
//
//	Timeout (first — outermost) → Retry → Logging → Provider
package middleware
