package ai

import "context"

// Completer is the core interface every LLM provider implementation must
// satisfy: one prompt in, one completed text out. Workflow nodes depend on
// this interface rather than a concrete provider, so labs and tests can swap
// in stubs.
type Completer interface {
	// Complete sends a completion request and returns the model's full text.
	// Returns an error if the provider call fails, the context is cancelled,
	// or the response cannot be decoded.
	Complete(ctx context.Context, request Request) (string, error)
}

// StreamCompleter is an optional interface providers implement to support
// streaming (SSE-based) responses. Callers detect streaming support via type
// assertion: completer.(StreamCompleter). Providers that do not implement it
// are wrapped with [NewSingleFragmentStream] as a fallback.
type StreamCompleter interface {
	Completer

	// StreamComplete sends a completion request and returns a Stream that
	// yields text fragments as they arrive from the API. Pre-stream errors
	// (auth, bad request, network) are returned as a normal error. Mid-stream
	// errors are yielded through the iterator.
	StreamComplete(ctx context.Context, request Request) (*Stream, error)
}
