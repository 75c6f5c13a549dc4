package state

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestMergeDisjointUpdatesIsUnion(t *testing.T) {
	store := NewStore(Record{"seed": "value"})

	if err := store.Merge(Update{"alpha": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Merge(Update{"beta": 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Record{"seed": "value", "alpha": 1, "beta": 2}
	if !reflect.DeepEqual(store.Snapshot(), expected) {
		t.Errorf("expected %v, got %v", expected, store.Snapshot())
	}
}

func TestMergeLastWriterWins(t *testing.T) {
	store := NewStore(nil)

	if err := store.Merge(Update{"field": "first"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Merge(Update{"field": "second"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.Snapshot().String("field"); got != "second" {
		t.Errorf("expected last write to win, got %q", got)
	}
}

func TestMergeCommutesForDisjointFields(t *testing.T) {
	updateA := Update{"x": "from-a"}
	updateB := Update{"y": "from-b"}

	storeAB := NewStore(nil)
	storeAB.Merge(updateA)
	storeAB.Merge(updateB)

	storeBA := NewStore(nil)
	storeBA.Merge(updateB)
	storeBA.Merge(updateA)

	if !reflect.DeepEqual(storeAB.Snapshot(), storeBA.Snapshot()) {
		t.Errorf("disjoint merges did not commute: %v vs %v", storeAB.Snapshot(), storeBA.Snapshot())
	}
}

func TestMergeAcceptedShapes(t *testing.T) {
	tests := []struct {
		name   string
		update any
		want   Record
	}{
		{"nil is a no-op", nil, Record{}},
		{"Update", Update{"k": "v"}, Record{"k": "v"}},
		{"Record", Record{"k": "v"}, Record{"k": "v"}},
		{"plain map", map[string]any{"k": "v"}, Record{"k": "v"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewStore(nil)
			if err := store.Merge(test.update); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(store.Snapshot(), test.want) {
				t.Errorf("expected %v, got %v", test.want, store.Snapshot())
			}
		})
	}
}

func TestMergeRejectsNonMappingUpdate(t *testing.T) {
	store := NewStore(nil)

	for _, update := range []any{"a string", 42, []string{"list"}} {
		if err := store.Merge(update); !errors.Is(err, ErrNonMappingUpdate) {
			t.Errorf("expected ErrNonMappingUpdate for %T, got %v", update, err)
		}
	}
}

func TestSnapshotIsolatedFromStore(t *testing.T) {
	store := NewStore(Record{"field": "original"})

	snapshot := store.Snapshot()
	snapshot["field"] = "mutated"
	snapshot["extra"] = true

	if got := store.Snapshot().String("field"); got != "original" {
		t.Errorf("snapshot mutation leaked into store: %q", got)
	}
	if _, exists := store.Snapshot()["extra"]; exists {
		t.Error("snapshot mutation added a field to the store")
	}
}

func TestMergeSafeUnderConcurrency(t *testing.T) {
	store := NewStore(nil)

	var waitGroup sync.WaitGroup
	for workerIndex := 0; workerIndex < 32; workerIndex++ {
		waitGroup.Add(1)
		go func(index int) {
			defer waitGroup.Done()
			store.Merge(Update{string(rune('a' + index%26)): index})
			store.Snapshot()
		}(workerIndex)
	}
	waitGroup.Wait()

	if len(store.Snapshot()) == 0 {
		t.Error("expected concurrent merges to land")
	}
}
