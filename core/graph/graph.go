package graph

import (
	"context"

	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/observability"
)

// Start and End are the entry and terminal markers of every graph. They are
// reserved: no node may be registered under either name. Edges from Start
// select the nodes that run first; an edge (or router decision) targeting End
// ends that path of the run.
const (
	Start = "__start__"
	End   = "__end__"
)

// HandlerFunc is the work contract of a node. It receives a read-only
// snapshot of the run's state and returns a partial update: only the fields
// the node wants to set. The returned value must be field-to-value shaped
// (state.Update, state.Record, map[string]any, or nil for a no-op); anything
// else aborts the run with state.ErrNonMappingUpdate.
//
// The handler may block on its own external call (typically an LLM
// completion); the scheduler itself only blocks while waiting for fan-out
// members to finish.
type HandlerFunc func(ctx context.Context, snapshot state.Record) (any, error)

// RouterFunc is the decision contract of a conditional edge. It receives the
// current merged state and returns the name of exactly one declared possible
// target (or End). Routers must be pure: deterministic, no side effects.
type RouterFunc func(snapshot state.Record) string

// ErrorStrategy defines how a run handles a node failure when sibling
// fan-out branches are still in flight.
type ErrorStrategy string

const (
	// FailSlow lets sibling fan-out members run to completion before the
	// aggregate failure is surfaced. Their merged fields stay inspectable in
	// the returned record, which is often diagnostically useful. This is the
	// default strategy.
	FailSlow ErrorStrategy = "fail_slow"

	// FailFast cancels the run context as soon as any node fails, propagating
	// cancellation to sibling members still in flight.
	FailFast ErrorStrategy = "fail_fast"
)

// node is a named unit of work. Created at build time, immutable thereafter.
type node struct {
	name    string
	handler HandlerFunc
}

// conditional is a routing decision attached to a source node: the router
// picks one of the declared targets at run time.
type conditional struct {
	router  RouterFunc
	targets []string
	allowed map[string]bool
}

// config holds graph-level execution configuration populated by Options.
type config struct {
	// errorStrategy defaults to FailSlow.
	errorStrategy ErrorStrategy

	// maxConcurrency limits concurrently running nodes. Zero means unlimited.
	maxConcurrency int

	// observer receives run and node lifecycle logs. Nil means the observer
	// is resolved from the run context, falling back to a no-op.
	observer observability.Provider
}

// Graph is a validated, immutable topology ready for execution. It is built
// once via [Builder.Build] and is safe for concurrent Run calls: all per-run
// state lives in the run, not the Graph.
type Graph struct {
	// nodes maps node names to their definitions.
	nodes map[string]*node

	// successors maps a source (node name or Start) to its unconditional
	// targets. Two or more targets form a fan-out group.
	successors map[string][]string

	// conditionals maps a source to its routing decision. A source has either
	// unconditional successors or a conditional, never both.
	conditionals map[string]*conditional

	// barrier maps each node to the number of unconditional incoming edges it
	// must observe before running (the fan-in barrier).
	barrier map[string]int

	config *config
}
