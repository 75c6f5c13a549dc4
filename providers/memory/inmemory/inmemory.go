package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/memory"
)

// ConversationStore is a concurrency-safe in-memory memory.Store. It uses
// RWMutex to guard access and is efficient for read-heavy workloads. State
// is lost on process exit; use redismem when conversations must survive
// restarts.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

// conversation is the stored form of one thread.
type conversation struct {
	record state.Record
	turns  []memory.Turn
}

// New returns a new, empty [ConversationStore] ready for immediate use.
func New() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*conversation),
	}
}

// Ensure ConversationStore implements memory.Store at compile time.
var _ memory.Store = (*ConversationStore)(nil)

// Create implements memory.Store.
func (store *ConversationStore) Create(ctx context.Context, conversationID string, initial state.Record) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.conversations[conversationID]; exists {
		return fmt.Errorf("%w: %s", memory.ErrConversationExists, conversationID)
	}

	store.conversations[conversationID] = &conversation{record: initial.Clone()}
	return nil
}

// Load implements memory.Store.
func (store *ConversationStore) Load(ctx context.Context, conversationID string) (state.Record, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	stored, exists := store.conversations[conversationID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
	}
	return stored.record.Clone(), nil
}

// Commit implements memory.Store.
func (store *ConversationStore) Commit(ctx context.Context, conversationID string, record state.Record, turn memory.Turn) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored, exists := store.conversations[conversationID]
	if !exists {
		return fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
	}

	stored.record = record.Clone()
	stored.turns = append(stored.turns, turn)
	return nil
}

// History implements memory.Store.
func (store *ConversationStore) History(ctx context.Context, conversationID string) ([]memory.Turn, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	stored, exists := store.conversations[conversationID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
	}

	turns := make([]memory.Turn, len(stored.turns))
	copy(turns, stored.turns)
	return turns, nil
}

// Delete implements memory.Store.
func (store *ConversationStore) Delete(ctx context.Context, conversationID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.conversations[conversationID]; !exists {
		return fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
	}

	delete(store.conversations, conversationID)
	return nil
}
