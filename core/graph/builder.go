package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Builder constructs a validated Graph using a fluent API. Nodes and edges
// are registered incrementally; registration problems (duplicate names,
// unknown endpoints) are accumulated and reported when Build() is called,
// alongside the structural validation (reachability, terminal path,
// acyclicity).
//
// Example:
//
//	g, err := graph.NewBuilder().
//	    AddNode("triage", triageHandler).
//	    AddNode("it", itHandler).
//	    AddNode("hr", hrHandler).
//	    SetEntry("triage").
//	    AddConditionalEdge("triage", routeByCategory, "it", "hr").
//	    AddEdge("it", graph.End).
//	    AddEdge("hr", graph.End).
//	    Build()
type Builder struct {
	// nodes stores all registered nodes keyed by name.
	nodes map[string]*node

	// nodeOrder preserves insertion order for deterministic error reporting.
	nodeOrder []string

	// edges stores all unconditional directed edges.
	edges []edge

	// conditionals stores at most one routing decision per source.
	conditionals map[string]*conditional

	// buildErrors accumulates registration errors, reported at Build().
	buildErrors []error

	config *config
}

// edge is a directed unconditional relation between two names.
type edge struct {
	from string
	to   string
}

// NewBuilder creates an empty Builder. Graph-level options (WithErrorStrategy,
// WithMaxConcurrency, WithObserver) are applied here.
func NewBuilder(opts ...Option) *Builder {
	builderConfig := &config{
		errorStrategy: FailSlow,
	}
	for _, opt := range opts {
		opt(builderConfig)
	}

	return &Builder{
		nodes:        make(map[string]*node),
		conditionals: make(map[string]*conditional),
		config:       builderConfig,
	}
}

// AddNode registers a named unit of work. The name must be unique and must
// not collide with the Start/End markers; violations are recorded and
// reported at Build() time with ErrDuplicateNode.
func (builder *Builder) AddNode(name string, handler HandlerFunc) *Builder {
	if name == "" {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("node name must not be empty"))
		return builder
	}

	if handler == nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("handler must not be nil for node %q", name))
		return builder
	}

	if name == Start || name == End {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: %q collides with a reserved marker", ErrDuplicateNode, name))
		return builder
	}

	if _, exists := builder.nodes[name]; exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: %q", ErrDuplicateNode, name))
		return builder
	}

	builder.nodes[name] = &node{name: name, handler: handler}
	builder.nodeOrder = append(builder.nodeOrder, name)

	return builder
}

// SetEntry designates the first node of the graph. It is shorthand for
// AddEdge(Start, name). Use AddFanOut(Start, ...) instead when the run should
// begin with a concurrent dispatch group.
func (builder *Builder) SetEntry(name string) *Builder {
	return builder.AddEdge(Start, name)
}

// AddEdge creates an unconditional directed edge. The source must be a
// registered node or Start; the target must be a registered node or End.
// Registering two or more edges from the same source forms a fan-out group;
// a node with two or more incoming edges becomes a fan-in barrier.
func (builder *Builder) AddEdge(from, to string) *Builder {
	if from == to {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: self-loop on %q", ErrUnsupportedTopology, from))
		return builder
	}

	if !builder.validSource(from) {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: edge source %q", ErrUnknownNode, from))
		return builder
	}

	if !builder.validTarget(to) {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: edge target %q", ErrUnknownNode, to))
		return builder
	}

	builder.edges = append(builder.edges, edge{from: from, to: to})

	return builder
}

// AddFanOut registers a concurrent dispatch group: unconditional edges from
// one source to every named target, all eligible to run concurrently once the
// source's state is merged.
func (builder *Builder) AddFanOut(from string, targets ...string) *Builder {
	if len(targets) == 0 {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("fan-out from %q declares no targets", from))
		return builder
	}

	for _, target := range targets {
		builder.AddEdge(from, target)
	}

	return builder
}

// AddConditionalEdge attaches a routing decision to a source node. At run
// time the router receives the current merged state and must return one of
// the declared possible targets (registered node names, or End to finish the
// path). A source carries at most one conditional edge and must not mix it
// with unconditional outgoing edges.
func (builder *Builder) AddConditionalEdge(from string, router RouterFunc, possibleTargets ...string) *Builder {
	if router == nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("router must not be nil for conditional edge from %q", from))
		return builder
	}

	if len(possibleTargets) == 0 {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("conditional edge from %q declares no possible targets", from))
		return builder
	}

	if !builder.validSource(from) {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: conditional edge source %q", ErrUnknownNode, from))
		return builder
	}

	if _, exists := builder.conditionals[from]; exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: node %q already has a conditional edge", ErrUnsupportedTopology, from))
		return builder
	}

	allowed := make(map[string]bool, len(possibleTargets))
	for _, target := range possibleTargets {
		if !builder.validTarget(target) {
			builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: declared conditional target %q", ErrUnknownNode, target))
			return builder
		}
		allowed[target] = true
	}

	builder.conditionals[from] = &conditional{
		router:  router,
		targets: possibleTargets,
		allowed: allowed,
	}

	return builder
}

// validSource reports whether a name may appear as an edge source.
func (builder *Builder) validSource(name string) bool {
	if name == Start {
		return true
	}
	_, exists := builder.nodes[name]
	return exists
}

// validTarget reports whether a name may appear as an edge target.
func (builder *Builder) validTarget(name string) bool {
	if name == End {
		return true
	}
	_, exists := builder.nodes[name]
	return exists
}

// Build validates the topology and produces an immutable, executable Graph.
// Validations, in order:
//
//  1. No accumulated registration errors
//  2. At least one node exists
//  3. No duplicate edges; no source mixing conditional and unconditional edges
//  4. The entry marker has at least one outgoing edge
//  5. Every node is reachable from the entry marker
//  6. Every node has a path to the terminal marker
//  7. The edge set is acyclic (cycles are rejected defensively)
//
// On failure no partially valid topology is ever returned.
func (builder *Builder) Build() (*Graph, error) {
	if len(builder.buildErrors) > 0 {
		return nil, fmt.Errorf("graph build errors: %w", errors.Join(builder.buildErrors...))
	}

	if len(builder.nodes) == 0 {
		return nil, fmt.Errorf("graph must contain at least one node")
	}

	if err := builder.validateEdgeSet(); err != nil {
		return nil, err
	}

	if len(builder.outgoing(Start)) == 0 {
		return nil, fmt.Errorf("%w: entry marker has no outgoing edge", ErrNoTerminalPath)
	}

	if err := builder.validateReachability(); err != nil {
		return nil, err
	}

	if err := builder.validateTerminalPaths(); err != nil {
		return nil, err
	}

	if err := builder.validateAcyclic(); err != nil {
		return nil, err
	}

	return &Graph{
		nodes:        builder.nodes,
		successors:   builder.successorMap(),
		conditionals: builder.conditionals,
		barrier:      builder.barrierMap(),
		config:       builder.config,
	}, nil
}

// validateEdgeSet rejects duplicate unconditional edges and sources that mix
// a conditional edge with unconditional ones.
func (builder *Builder) validateEdgeSet() error {
	edgeSet := make(map[edge]bool, len(builder.edges))
	for _, graphEdge := range builder.edges {
		if edgeSet[graphEdge] {
			return fmt.Errorf("%w: duplicate edge from %q to %q", ErrUnsupportedTopology, graphEdge.from, graphEdge.to)
		}
		edgeSet[graphEdge] = true

		if _, hasConditional := builder.conditionals[graphEdge.from]; hasConditional {
			return fmt.Errorf("%w: node %q mixes conditional and unconditional outgoing edges", ErrUnsupportedTopology, graphEdge.from)
		}
	}
	return nil
}

// outgoing returns every potential successor of a source: its unconditional
// targets plus every declared conditional target. End is included when
// declared.
func (builder *Builder) outgoing(source string) []string {
	var targets []string
	for _, graphEdge := range builder.edges {
		if graphEdge.from == source {
			targets = append(targets, graphEdge.to)
		}
	}
	if cond, exists := builder.conditionals[source]; exists {
		targets = append(targets, cond.targets...)
	}
	return targets
}

// validateReachability walks every potential edge from Start and reports
// registered nodes the walk never visits.
func (builder *Builder) validateReachability() error {
	visited := map[string]bool{Start: true}
	frontier := []string{Start}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		for _, target := range builder.outgoing(current) {
			if target == End || visited[target] {
				continue
			}
			visited[target] = true
			frontier = append(frontier, target)
		}
	}

	var unreachable []string
	for _, name := range builder.nodeOrder {
		if !visited[name] {
			unreachable = append(unreachable, name)
		}
	}

	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		return fmt.Errorf("%w: %v", ErrUnreachableNode, unreachable)
	}

	return nil
}

// validateTerminalPaths verifies that every node has at least one potential
// path to the terminal marker, walking the edge set in reverse from End.
func (builder *Builder) validateTerminalPaths() error {
	// Build the reverse adjacency over potential edges.
	incoming := make(map[string][]string)
	for _, name := range builder.nodeOrder {
		for _, target := range builder.outgoing(name) {
			incoming[target] = append(incoming[target], name)
		}
	}
	for _, target := range builder.outgoing(Start) {
		incoming[target] = append(incoming[target], Start)
	}

	reachesEnd := map[string]bool{End: true}
	frontier := []string{End}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		for _, source := range incoming[current] {
			if reachesEnd[source] {
				continue
			}
			reachesEnd[source] = true
			frontier = append(frontier, source)
		}
	}

	var stranded []string
	for _, name := range builder.nodeOrder {
		if !reachesEnd[name] {
			stranded = append(stranded, name)
		}
	}

	if len(stranded) > 0 {
		sort.Strings(stranded)
		return fmt.Errorf("%w: %v", ErrNoTerminalPath, stranded)
	}

	return nil
}

// validateAcyclic runs Kahn's algorithm over the potential edge set (every
// unconditional edge plus every declared conditional target) and rejects the
// graph if any node remains unprocessed, naming the nodes involved.
func (builder *Builder) validateAcyclic() error {
	inDegree := make(map[string]int, len(builder.nodes))
	adjacency := make(map[string][]string, len(builder.nodes))
	for name := range builder.nodes {
		inDegree[name] = 0
	}

	for _, name := range builder.nodeOrder {
		for _, target := range builder.outgoing(name) {
			if target == End {
				continue
			}
			adjacency[name] = append(adjacency[name], target)
			inDegree[target]++
		}
	}

	// Entry edges do not contribute to in-degree; seed the frontier with
	// every node no other node points at.
	var frontier []string
	for name, degree := range inDegree {
		if degree == 0 {
			frontier = append(frontier, name)
		}
	}

	processed := 0
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		processed++

		for _, neighbor := range adjacency[current] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				frontier = append(frontier, neighbor)
			}
		}
	}

	if processed != len(builder.nodes) {
		var cycleNodes []string
		for name, degree := range inDegree {
			if degree > 0 {
				cycleNodes = append(cycleNodes, name)
			}
		}
		sort.Strings(cycleNodes)
		return fmt.Errorf("%w: cycle involving nodes %v", ErrUnsupportedTopology, cycleNodes)
	}

	return nil
}

// successorMap groups unconditional edges by source.
func (builder *Builder) successorMap() map[string][]string {
	successors := make(map[string][]string)
	for _, graphEdge := range builder.edges {
		successors[graphEdge.from] = append(successors[graphEdge.from], graphEdge.to)
	}
	return successors
}

// barrierMap counts the unconditional incoming edges per node: the number of
// predecessors a fan-in node waits for before running.
func (builder *Builder) barrierMap() map[string]int {
	barrier := make(map[string]int, len(builder.nodes))
	for name := range builder.nodes {
		barrier[name] = 0
	}
	for _, graphEdge := range builder.edges {
		if graphEdge.to == End {
			continue
		}
		barrier[graphEdge.to]++
	}
	return barrier
}
