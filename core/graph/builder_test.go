package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/leofalp/flowlab/core/state"
)

// noop is a handler that changes nothing, for tests that only exercise
// topology validation.
func noop(ctx context.Context, snapshot state.Record) (any, error) {
	return nil, nil
}

func TestBuildSequentialGraph(t *testing.T) {
	built, err := NewBuilder().
		AddNode("first", noop).
		AddNode("second", noop).
		SetEntry("first").
		AddEdge("first", "second").
		AddEdge("second", End).
		Build()

	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if built == nil {
		t.Fatal("expected a graph")
	}
}

func TestBuildRejectsEmptyGraph(t *testing.T) {
	if _, err := NewBuilder().Build(); err == nil {
		t.Error("expected an error for a graph with no nodes")
	}
}

func TestBuildRejectsDuplicateNode(t *testing.T) {
	_, err := NewBuilder().
		AddNode("worker", noop).
		AddNode("worker", noop).
		SetEntry("worker").
		AddEdge("worker", End).
		Build()

	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestBuildRejectsReservedNodeNames(t *testing.T) {
	for _, reserved := range []string{Start, End} {
		_, err := NewBuilder().
			AddNode(reserved, noop).
			Build()

		if !errors.Is(err, ErrDuplicateNode) {
			t.Errorf("expected ErrDuplicateNode for %q, got %v", reserved, err)
		}
	}
}

func TestBuildRejectsUnknownEdgeEndpoints(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Graph, error)
	}{
		{
			name: "unknown source",
			build: func() (*Graph, error) {
				return NewBuilder().
					AddNode("known", noop).
					SetEntry("known").
					AddEdge("ghost", End).
					AddEdge("known", End).
					Build()
			},
		},
		{
			name: "unknown target",
			build: func() (*Graph, error) {
				return NewBuilder().
					AddNode("known", noop).
					SetEntry("known").
					AddEdge("known", "ghost").
					Build()
			},
		},
		{
			name: "unknown conditional target",
			build: func() (*Graph, error) {
				return NewBuilder().
					AddNode("known", noop).
					SetEntry("known").
					AddConditionalEdge("known", func(state.Record) string { return "ghost" }, "ghost").
					Build()
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := test.build(); !errors.Is(err, ErrUnknownNode) {
				t.Errorf("expected ErrUnknownNode, got %v", err)
			}
		})
	}
}

func TestBuildRejectsUnreachableNode(t *testing.T) {
	_, err := NewBuilder().
		AddNode("connected", noop).
		AddNode("orphan", noop).
		SetEntry("connected").
		AddEdge("connected", End).
		AddEdge("orphan", End).
		Build()

	if !errors.Is(err, ErrUnreachableNode) {
		t.Errorf("expected ErrUnreachableNode, got %v", err)
	}
}

func TestBuildRejectsMissingEntry(t *testing.T) {
	_, err := NewBuilder().
		AddNode("worker", noop).
		AddEdge("worker", End).
		Build()

	if !errors.Is(err, ErrNoTerminalPath) {
		t.Errorf("expected ErrNoTerminalPath for a graph with no entry edge, got %v", err)
	}
}

func TestBuildRejectsNodeWithoutTerminalPath(t *testing.T) {
	// "sink" has an incoming edge but never declares a way out.
	_, err := NewBuilder().
		AddNode("entry", noop).
		AddNode("sink", noop).
		SetEntry("entry").
		AddEdge("entry", "sink").
		Build()

	if !errors.Is(err, ErrNoTerminalPath) {
		t.Errorf("expected ErrNoTerminalPath, got %v", err)
	}
}

func TestBuildRejectsCycle(t *testing.T) {
	_, err := NewBuilder().
		AddNode("a", noop).
		AddNode("b", noop).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", "a").
		AddEdge("b", End).
		Build()

	if !errors.Is(err, ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology for a cycle, got %v", err)
	}
}

func TestBuildRejectsSelfLoop(t *testing.T) {
	_, err := NewBuilder().
		AddNode("loop", noop).
		SetEntry("loop").
		AddEdge("loop", "loop").
		AddEdge("loop", End).
		Build()

	if !errors.Is(err, ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology for a self-loop, got %v", err)
	}
}

func TestBuildRejectsDuplicateEdge(t *testing.T) {
	_, err := NewBuilder().
		AddNode("worker", noop).
		SetEntry("worker").
		AddEdge("worker", End).
		AddEdge("worker", End).
		Build()

	if !errors.Is(err, ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology for a duplicate edge, got %v", err)
	}
}

func TestBuildRejectsMixedConditionalAndUnconditionalEdges(t *testing.T) {
	_, err := NewBuilder().
		AddNode("decider", noop).
		AddNode("left", noop).
		AddNode("right", noop).
		SetEntry("decider").
		AddEdge("decider", "left").
		AddConditionalEdge("decider", func(state.Record) string { return "right" }, "right").
		AddEdge("left", End).
		AddEdge("right", End).
		Build()

	if !errors.Is(err, ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology, got %v", err)
	}
}

func TestBuildRejectsSecondConditionalOnSameSource(t *testing.T) {
	router := func(state.Record) string { return "left" }

	_, err := NewBuilder().
		AddNode("decider", noop).
		AddNode("left", noop).
		AddNode("right", noop).
		SetEntry("decider").
		AddConditionalEdge("decider", router, "left", "right").
		AddConditionalEdge("decider", router, "left").
		AddEdge("left", End).
		AddEdge("right", End).
		Build()

	if !errors.Is(err, ErrUnsupportedTopology) {
		t.Errorf("expected ErrUnsupportedTopology, got %v", err)
	}
}

func TestBuildAccumulatesRegistrationErrors(t *testing.T) {
	_, err := NewBuilder().
		AddNode("worker", nil).
		AddEdge("ghost", End).
		Build()

	if err == nil {
		t.Fatal("expected accumulated registration errors")
	}
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected the unknown-node error to be preserved, got %v", err)
	}
}

func TestBuildAcceptsFanOutWithFanIn(t *testing.T) {
	built, err := NewBuilder().
		AddNode("split", noop).
		AddNode("left", noop).
		AddNode("right", noop).
		AddNode("join", noop).
		SetEntry("split").
		AddFanOut("split", "left", "right").
		AddEdge("left", "join").
		AddEdge("right", "join").
		AddEdge("join", End).
		Build()

	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if got := built.barrier["join"]; got != 2 {
		t.Errorf("expected join barrier of 2, got %d", got)
	}
}

func TestBuildAcceptsConditionalRouteToEnd(t *testing.T) {
	_, err := NewBuilder().
		AddNode("decider", noop).
		AddNode("extra", noop).
		SetEntry("decider").
		AddConditionalEdge("decider", func(state.Record) string { return End }, "extra", End).
		AddEdge("extra", End).
		Build()

	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
}
