package memory

import (
	"context"
	"errors"
	"time"

	"github.com/leofalp/flowlab/core/state"
)

var (
	// ErrUnknownConversation is returned when an operation references a
	// conversation id that was never created (or has been deleted).
	ErrUnknownConversation = errors.New("unknown conversation")

	// ErrConversationExists is returned by Create when the id is already
	// taken.
	ErrConversationExists = errors.New("conversation already exists")
)

// Turn is one committed exchange of a conversation: what the user said and
// what the workflow finally answered.
type Turn struct {
	// Input is the user's message for this turn.
	Input string `json:"input"`

	// Final is the workflow's answer for this turn.
	Final string `json:"final"`

	// CreatedAt is when the turn was committed.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists conversation state between workflow runs. A conversation is
// a named thread: its latest committed state record (the memory carried into
// the next run) plus the ordered history of committed turns.
//
// Commit replaces the stored record and appends one turn atomically with
// respect to other Store calls; a failed workflow run must simply not be
// committed, leaving the conversation at its previous state.
type Store interface {
	// Create registers a new conversation seeded with an initial record.
	// Returns ErrConversationExists when the id is already taken.
	Create(ctx context.Context, conversationID string, initial state.Record) error

	// Load returns the latest committed state record of a conversation.
	Load(ctx context.Context, conversationID string) (state.Record, error)

	// Commit stores the record produced by a successful run and appends the
	// turn to the conversation's history.
	Commit(ctx context.Context, conversationID string, record state.Record, turn Turn) error

	// History returns the committed turns in order, oldest first.
	History(ctx context.Context, conversationID string) ([]Turn, error)

	// Delete removes a conversation and its history.
	Delete(ctx context.Context, conversationID string) error
}
