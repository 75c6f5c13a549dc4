package ai

import (
	"iter"
	"strings"
)

// Stream wraps a lazy, finite, non-restartable sequence of text fragments
// produced by a streaming completion. It supports both range-based iteration
// for real-time token processing and a convenience Collect() method for
// callers who want the assembled text.
//
// Important: callers must consume the stream, either by iterating with Iter()
// (including breaking out of the loop early) or by calling Collect(). The
// underlying provider may hold open resources (such as an HTTP response body)
// that are only released when the iterator completes or is abandoned via a
// loop break. Constructing a Stream and never iterating it will leak those
// resources.
type Stream struct {
	iterator iter.Seq2[string, error]
	consumed bool
}

// NewStream creates a Stream from a raw fragment iterator. The iterator is
// expected to yield text fragments (with nil error) for normal deltas, and
// may yield a non-nil error to signal a mid-stream failure.
func NewStream(iterator iter.Seq2[string, error]) *Stream {
	return &Stream{iterator: iterator}
}

// NewSingleFragmentStream wraps an already complete text as a one-fragment
// stream. This is the fallback when a provider does not support streaming.
func NewSingleFragmentStream(text string) *Stream {
	return NewStream(func(yield func(string, error) bool) {
		if text == "" {
			return
		}
		yield(text, nil)
	})
}

// Iter returns the underlying iterator for use with range-over-func loops.
// A Stream may be iterated at most once.
//
// Example:
//
//	for fragment, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(fragment)
//	}
func (stream *Stream) Iter() iter.Seq2[string, error] {
	if stream.consumed {
		return func(yield func(string, error) bool) {}
	}
	stream.consumed = true
	return stream.iterator
}

// Collect consumes the entire stream and returns the concatenated text. This
// is a convenience for callers who want the complete response but still
// benefit from streaming transport (lower time-to-first-byte). A mid-stream
// error terminates collection and returns the partial text alongside it.
func (stream *Stream) Collect() (string, error) {
	var assembled strings.Builder
	for fragment, err := range stream.Iter() {
		if err != nil {
			return assembled.String(), err
		}
		assembled.WriteString(fragment)
	}
	return assembled.String(), nil
}
