package graph

import (
	"errors"
	"fmt"
)

// Build-time errors. Build() never returns a partially valid graph: the first
// validation failure (or the joined set of accumulated registration errors)
// is fatal.
var (
	// ErrDuplicateNode reports a node registered twice under the same name,
	// or a node name colliding with the Start/End markers.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode reports an edge endpoint or a declared conditional
	// target that was never registered.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnreachableNode reports a registered node with no path from the
	// entry marker.
	ErrUnreachableNode = errors.New("node unreachable from entry")

	// ErrNoTerminalPath reports a graph (or a node) with no path to the
	// terminal marker.
	ErrNoTerminalPath = errors.New("no path to terminal marker")

	// ErrUnsupportedTopology reports a shape the engine rejects defensively:
	// cycles, duplicate edges, or a node mixing conditional and unconditional
	// outgoing edges.
	ErrUnsupportedTopology = errors.New("unsupported topology")
)

// Run-time errors.
var (
	// ErrInvalidRoute reports a router function returning a name that was
	// not declared as a possible target for its conditional edge.
	ErrInvalidRoute = errors.New("invalid route")
)

// NodeError carries the failure of a single node's work function: the node
// name and the underlying cause. The run that produced it is aborted; the
// engine performs no retries.
type NodeError struct {
	// Node is the name of the node whose work function failed.
	Node string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (nodeError *NodeError) Error() string {
	return fmt.Sprintf("node %q failed: %v", nodeError.Node, nodeError.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (nodeError *NodeError) Unwrap() error {
	return nodeError.Err
}
