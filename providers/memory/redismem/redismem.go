package redismem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/memory"
	backend "github.com/redis/go-redis/v9"
)

// ConversationStore implements memory.Store on Redis, so conversations
// survive process restarts and can be shared between replicas of the webhook
// server. Each conversation uses two keys: a string holding the latest state
// record as JSON, and a list of committed turns.
type ConversationStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a ConversationStore.
type Option func(*ConversationStore)

// WithPrefix sets the key prefix. The default is "flowlab:conv:".
func WithPrefix(prefix string) Option {
	return func(store *ConversationStore) {
		store.prefix = prefix
	}
}

// WithTTL sets an expiration applied to a conversation's keys on every
// commit, so idle conversations age out. Zero (the default) means no
// expiration.
func WithTTL(ttl time.Duration) Option {
	return func(store *ConversationStore) {
		store.ttl = ttl
	}
}

// New creates a store with its own Redis client.
func New(address, password string, db int, opts ...Option) *ConversationStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a store from an existing client, which the caller
// keeps ownership of.
func NewFromClient(client *backend.Client, opts ...Option) *ConversationStore {
	store := &ConversationStore{
		client: client,
		prefix: "flowlab:conv:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Ensure ConversationStore implements memory.Store at compile time.
var _ memory.Store = (*ConversationStore)(nil)

func (store *ConversationStore) stateKey(conversationID string) string {
	return store.prefix + conversationID + ":state"
}

func (store *ConversationStore) turnsKey(conversationID string) string {
	return store.prefix + conversationID + ":turns"
}

// Create implements memory.Store. SETNX on the state key makes creation
// atomic across replicas.
func (store *ConversationStore) Create(ctx context.Context, conversationID string, initial state.Record) error {
	if initial == nil {
		initial = state.Record{}
	}
	data, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("failed to marshal initial record: %w", err)
	}

	created, err := store.client.SetNX(ctx, store.stateKey(conversationID), data, store.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create conversation in redis: %w", err)
	}
	if !created {
		return fmt.Errorf("%w: %s", memory.ErrConversationExists, conversationID)
	}
	return nil
}

// Load implements memory.Store.
func (store *ConversationStore) Load(ctx context.Context, conversationID string) (state.Record, error) {
	data, err := store.client.Get(ctx, store.stateKey(conversationID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
		}
		return nil, fmt.Errorf("failed to load conversation from redis: %w", err)
	}

	var record state.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation record: %w", err)
	}
	return record, nil
}

// Commit implements memory.Store. The record replacement and the turn append
// run in one pipeline.
func (store *ConversationStore) Commit(ctx context.Context, conversationID string, record state.Record, turn memory.Turn) error {
	exists, err := store.client.Exists(ctx, store.stateKey(conversationID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check conversation in redis: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
	}

	recordData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	turnData, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	pipe := store.client.Pipeline()
	pipe.Set(ctx, store.stateKey(conversationID), recordData, store.ttl)
	pipe.RPush(ctx, store.turnsKey(conversationID), turnData)
	if store.ttl > 0 {
		pipe.Expire(ctx, store.turnsKey(conversationID), store.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to commit conversation to redis: %w", err)
	}
	return nil
}

// History implements memory.Store.
func (store *ConversationStore) History(ctx context.Context, conversationID string) ([]memory.Turn, error) {
	exists, err := store.client.Exists(ctx, store.stateKey(conversationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation in redis: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
	}

	entries, err := store.client.LRange(ctx, store.turnsKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history from redis: %w", err)
	}

	turns := make([]memory.Turn, 0, len(entries))
	for _, entry := range entries {
		var turn memory.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Delete implements memory.Store.
func (store *ConversationStore) Delete(ctx context.Context, conversationID string) error {
	deleted, err := store.client.Del(ctx, store.stateKey(conversationID), store.turnsKey(conversationID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete conversation from redis: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", memory.ErrUnknownConversation, conversationID)
	}
	return nil
}

// Close closes the underlying Redis client. Only call it for stores created
// with [New]; stores built via [NewFromClient] do not own their client.
func (store *ConversationStore) Close() error {
	return store.client.Close()
}
