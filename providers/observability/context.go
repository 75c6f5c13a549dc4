package observability

import "context"

// contextKey is a private type for context keys to avoid collisions with
// other packages.
type contextKey struct{}

var observerKey contextKey

// ContextWithObserver returns a copy of ctx carrying the given observer.
// Downstream code (node handlers, providers) can retrieve it with
// [ObserverFromContext] to log within the same execution.
func ContextWithObserver(ctx context.Context, observer Provider) context.Context {
	return context.WithValue(ctx, observerKey, observer)
}

// ObserverFromContext retrieves the observer stored in ctx, or nil if none
// was attached.
func ObserverFromContext(ctx context.Context) Provider {
	observer, _ := ctx.Value(observerKey).(Provider)
	return observer
}
