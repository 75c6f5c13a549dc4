package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/memory"
)

// Runner executes one workflow pass over an initial state record.
// *graph.Graph satisfies it; tests use stubs.
type Runner interface {
	Run(ctx context.Context, initial state.Record) (state.Record, error)
}

// Manager threads a workflow through multi-turn conversations. Each turn
// loads the conversation's last committed record, lays the new input on top,
// runs the workflow, and commits the resulting record together with a
// history entry.
//
// The engine does not serialize concurrent Continue calls on the same
// conversation; callers are expected to have a single writer per
// conversation id (a chat user sends one message at a time).
type Manager struct {
	runner Runner
	store  memory.Store

	inputField string
	finalField string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithInputField names the record field holding the user's message for a
// turn. The default is "user_question".
func WithInputField(field string) ManagerOption {
	return func(manager *Manager) {
		manager.inputField = field
	}
}

// WithFinalField names the record field holding the workflow's answer for a
// turn. The default is "agent_response".
func WithFinalField(field string) ManagerOption {
	return func(manager *Manager) {
		manager.finalField = field
	}
}

// NewManager creates a Manager over a workflow runner and a conversation
// store.
func NewManager(runner Runner, store memory.Store, opts ...ManagerOption) *Manager {
	manager := &Manager{
		runner:     runner,
		store:      store,
		inputField: "user_question",
		finalField: "agent_response",
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager
}

// Start opens a new conversation and returns its id. An empty id asks the
// manager to generate one.
func (manager *Manager) Start(ctx context.Context, conversationID string) (string, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	if err := manager.store.Create(ctx, conversationID, state.Record{}); err != nil {
		return "", fmt.Errorf("failed to start conversation: %w", err)
	}
	return conversationID, nil
}

// Continue runs one turn of a conversation: load the last committed record,
// merge the turn's input fields on top, run the workflow, commit, and return
// the final record.
//
// A failed run commits nothing — the conversation stays at its last
// successful state — and the run's error is returned together with whatever
// partial record the workflow produced.
func (manager *Manager) Continue(ctx context.Context, conversationID string, input state.Update) (state.Record, error) {
	prior, err := manager.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	seed := prior.Clone()
	for field, value := range input {
		seed[field] = value
	}

	finalRecord, err := manager.runner.Run(ctx, seed)
	if err != nil {
		return finalRecord, err
	}

	turn := memory.Turn{
		Input:     seed.String(manager.inputField),
		Final:     finalRecord.String(manager.finalField),
		CreatedAt: time.Now().UTC(),
	}
	if err := manager.store.Commit(ctx, conversationID, finalRecord, turn); err != nil {
		return finalRecord, fmt.Errorf("run succeeded but commit failed: %w", err)
	}

	return finalRecord, nil
}

// History returns the conversation's committed turns, oldest first.
func (manager *Manager) History(ctx context.Context, conversationID string) ([]memory.Turn, error) {
	return manager.store.History(ctx, conversationID)
}
