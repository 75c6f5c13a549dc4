package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/observability"
)

// run holds all per-execution state, so a Graph stays immutable and safe for
// concurrent Run calls.
type run struct {
	graph    *Graph
	store    *state.Store
	observer observability.Provider

	ctx    context.Context
	cancel context.CancelFunc

	// semaphore bounds concurrently running nodes when maxConcurrency is set.
	semaphore chan struct{}

	mu sync.Mutex

	// remaining tracks, per node, how many unconditional predecessors have not
	// yet completed: the fan-in barrier countdown.
	remaining map[string]int

	// started guards against dispatching a node twice.
	started map[string]bool

	// failures accumulates node and routing errors. Under FailSlow, sibling
	// branches keep running and may append more than one.
	failures []error

	// endReached flips when any path arrives at the terminal marker.
	endReached bool

	waitGroup sync.WaitGroup
}

// Run executes the graph with the given initial state and returns the final
// merged record. On failure the record produced so far is returned alongside
// the error, so callers can inspect what the run managed to compute.
//
// The error is a *NodeError for a single node failure, an errors.Join of
// several when fail-slow lets sibling branches fail independently, or an
// ErrInvalidRoute-wrapped error when a router returned an undeclared target.
//
// Run is safe to call concurrently on the same Graph; every call owns its own
// state store.
func (graph *Graph) Run(ctx context.Context, initial state.Record) (state.Record, error) {
	observer := graph.config.observer
	if observer == nil {
		observer = observability.ObserverFromContext(ctx)
	}
	if observer == nil {
		observer = observability.Nop()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	execution := &run{
		graph:     graph,
		store:     state.NewStore(initial),
		observer:  observer,
		ctx:       runCtx,
		cancel:    cancel,
		remaining: make(map[string]int, len(graph.barrier)),
		started:   make(map[string]bool, len(graph.nodes)),
	}
	for name, count := range graph.barrier {
		execution.remaining[name] = count
	}
	if graph.config.maxConcurrency > 0 {
		execution.semaphore = make(chan struct{}, graph.config.maxConcurrency)
	}

	startedAt := time.Now()
	observer.Info("run started",
		observability.Int("nodes", len(graph.nodes)),
		observability.Int("initial_fields", len(initial)),
	)

	execution.advance(Start)
	execution.waitGroup.Wait()

	finalRecord := execution.store.Snapshot()
	runErr := execution.runError()

	if runErr != nil {
		observer.Error("run failed",
			observability.Duration("elapsed", time.Since(startedAt)),
			observability.Error(runErr),
		)
		return finalRecord, runErr
	}

	observer.Info("run completed",
		observability.Duration("elapsed", time.Since(startedAt)),
		observability.Int("final_fields", len(finalRecord)),
	)
	return finalRecord, nil
}

// runError folds the accumulated failures into a single error, and detects
// the silent-stall case where no path ever reached the terminal marker.
func (execution *run) runError() error {
	execution.mu.Lock()
	defer execution.mu.Unlock()

	switch len(execution.failures) {
	case 0:
		if !execution.endReached {
			return fmt.Errorf("%w: run finished without reaching the terminal marker", ErrUnsupportedTopology)
		}
		return nil
	case 1:
		return execution.failures[0]
	default:
		return errors.Join(execution.failures...)
	}
}

// fail records a failure. Under FailFast it also cancels the run context,
// propagating cancellation to sibling branches still in flight.
func (execution *run) fail(err error) {
	execution.mu.Lock()
	execution.failures = append(execution.failures, err)
	execution.mu.Unlock()

	if execution.graph.config.errorStrategy == FailFast {
		execution.cancel()
	}
}

// advance follows the outgoing edges of a completed source (a node name or
// Start): either asks its router for the one target to take, or notifies
// every unconditional successor.
func (execution *run) advance(source string) {
	if cond, exists := execution.graph.conditionals[source]; exists {
		execution.route(source, cond)
		return
	}

	for _, target := range execution.graph.successors[source] {
		if target == End {
			execution.markEndReached(source)
			continue
		}
		execution.arrive(target)
	}
}

// route evaluates a conditional edge against the current merged state and
// dispatches the chosen target.
func (execution *run) route(source string, cond *conditional) {
	target := cond.router(execution.store.Snapshot())

	if !cond.allowed[target] {
		execution.fail(fmt.Errorf("%w: router at %q returned %q, declared targets are %v",
			ErrInvalidRoute, source, target, cond.targets))
		return
	}

	execution.observer.Debug("route taken",
		observability.String("node", source),
		observability.String("target", target),
	)

	if target == End {
		execution.markEndReached(source)
		return
	}
	execution.dispatch(source, target)
}

// arrive counts down the target's fan-in barrier. The node is dispatched
// exactly once, when its last unconditional predecessor completes.
func (execution *run) arrive(target string) {
	execution.mu.Lock()
	execution.remaining[target]--
	ready := execution.remaining[target] <= 0 && !execution.started[target]
	if ready {
		execution.started[target] = true
	}
	execution.mu.Unlock()

	if ready {
		execution.spawn(target)
	}
}

// dispatch starts a conditionally routed target. Conditional edges do not
// participate in fan-in barriers: routing into a node that still awaits
// unconditional predecessors would stall the run, so it fails instead.
func (execution *run) dispatch(source, target string) {
	execution.mu.Lock()
	if execution.started[target] {
		execution.mu.Unlock()
		return
	}
	if execution.remaining[target] > 0 {
		pending := execution.remaining[target]
		execution.mu.Unlock()
		execution.fail(fmt.Errorf("%w: router at %q targets %q, which still awaits %d unconditional predecessor(s)",
			ErrUnsupportedTopology, source, target, pending))
		return
	}
	execution.started[target] = true
	execution.mu.Unlock()

	execution.spawn(target)
}

// markEndReached records that one path arrived at the terminal marker.
func (execution *run) markEndReached(source string) {
	execution.mu.Lock()
	execution.endReached = true
	execution.mu.Unlock()

	execution.observer.Debug("path reached terminal marker",
		observability.String("node", source),
	)
}

// spawn runs a node on its own goroutine, tracked by the run's wait group.
func (execution *run) spawn(name string) {
	execution.waitGroup.Add(1)
	go func() {
		defer execution.waitGroup.Done()
		execution.executeNode(name)
	}()
}

// executeNode performs one node's work: snapshot the state, invoke the
// handler, merge its partial update, then advance to the node's successors.
func (execution *run) executeNode(name string) {
	// A cancelled run (fail-fast sibling failure, or caller cancellation)
	// skips nodes that have not started their work yet.
	if execution.ctx.Err() != nil {
		return
	}

	if execution.semaphore != nil {
		execution.semaphore <- struct{}{}
		defer func() { <-execution.semaphore }()
	}

	startedAt := time.Now()
	execution.observer.Debug("node started", observability.String("node", name))

	currentNode := execution.graph.nodes[name]
	update, err := currentNode.handler(execution.ctx, execution.store.Snapshot())
	if err != nil {
		execution.observer.Error("node failed",
			observability.String("node", name),
			observability.Duration("elapsed", time.Since(startedAt)),
			observability.Error(err),
		)
		execution.fail(&NodeError{Node: name, Err: err})
		return
	}

	if err := execution.store.Merge(update); err != nil {
		execution.fail(&NodeError{Node: name, Err: err})
		return
	}

	execution.observer.Debug("node completed",
		observability.String("node", name),
		observability.Duration("elapsed", time.Since(startedAt)),
	)

	execution.advance(name)
}
