// Package graph implements a validated, directed acyclic workflow engine.
//
// A workflow is assembled with a [Builder]: named nodes (work functions over
// shared state), unconditional edges (including fan-out groups and fan-in
// barriers), and conditional edges (a router picks one declared target at run
// time). [Builder.Build] validates the topology — reachability from the entry
// marker, a path to the terminal marker for every node, acyclicity — and
// returns an immutable [Graph].
//
// [Graph.Run] executes the topology: nodes receive a snapshot of the merged
// state and return partial updates, fan-out members run concurrently, and a
// fan-in node starts once all of its unconditional predecessors have merged.
// The default fail-slow strategy lets sibling branches finish before a node
// failure is surfaced; [FailFast] cancels them instead.
package graph
