package state

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNonMappingUpdate is returned by [Store.Merge] when a node produced a
// value that is not field->value shaped. Nodes must return a partial update
// (a Record, an Update, a plain map, or nil for no-op).
var ErrNonMappingUpdate = errors.New("update is not field-to-value shaped")

// Record is the shared state threading through a single run. Keys are field
// names; values are arbitrary. A Record obtained from [Store.Snapshot] is a
// copy and safe to read without synchronization.
type Record map[string]any

// Update is a partial state update returned by a node: only the fields the
// node wants to set. Merging an Update never removes fields.
type Update map[string]any

// Clone returns a shallow copy of the record. Values are shared; a run's
// well-formedness relies on nodes treating snapshot values as read-only.
func (record Record) Clone() Record {
	cloned := make(Record, len(record))
	for key, value := range record {
		cloned[key] = value
	}
	return cloned
}

// String returns the record's string value for key, or "" when the field is
// absent or not a string. Convenience accessor for the common case of
// text-valued fields.
func (record Record) String(key string) string {
	value, _ := record[key].(string)
	return value
}

// Store holds the canonical Record for one run. All mutation goes through
// [Store.Merge], which is safe under concurrent invocation by fan-out
// branches. Reads take a snapshot so node handlers never observe a record
// mid-merge.
type Store struct {
	mu     sync.RWMutex
	record Record
}

// NewStore creates a Store seeded with a copy of the initial record.
// A nil initial record yields an empty store.
func NewStore(initial Record) *Store {
	store := &Store{record: make(Record, len(initial))}
	for key, value := range initial {
		store.record[key] = value
	}
	return store
}

// Snapshot returns a read-only copy of the canonical record.
func (store *Store) Snapshot() Record {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.record.Clone()
}

// Merge applies a partial update field by field. Within one synchronization
// point the last call wins on key collision; merges of disjoint-field updates
// commute, so fan-out branches converge to the same final record regardless
// of completion order.
//
// The update may be an [Update], a [Record], a plain map[string]any, or nil
// (a no-op). Any other shape fails with [ErrNonMappingUpdate].
func (store *Store) Merge(update any) error {
	fields, err := coerce(update)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for key, value := range fields {
		store.record[key] = value
	}
	return nil
}

// coerce normalizes the accepted update shapes into a single map form.
func coerce(update any) (map[string]any, error) {
	switch typed := update.(type) {
	case nil:
		return nil, nil
	case Update:
		return typed, nil
	case Record:
		return typed, nil
	case map[string]any:
		return typed, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNonMappingUpdate, update)
	}
}
