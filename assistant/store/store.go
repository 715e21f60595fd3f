// Package store provides persistence for assistant runs: the chat
// memory, user identity, and lifecycle of each conversation.
//
// Three implementations are provided:
//   - MemStore: in-memory, for tests and ephemeral assistants
//   - SQLiteStore: single-file database, zero setup
//   - MySQLStore: shared database for multi-process deployments
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID does not exist in the store.
var ErrNotFound = errors.New("run not found")

// RunRecord is the persisted form of one assistant run.
type RunRecord struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Name is the run's display name, set by Rename or AutoRename.
	Name string `json:"name,omitempty"`

	// UserID identifies the user the run belongs to.
	UserID string `json:"user_id,omitempty"`

	// Memory is the serialized chat memory (JSON).
	Memory []byte `json:"memory,omitempty"`

	// Meta holds arbitrary run metadata (JSON).
	Meta []byte `json:"meta,omitempty"`

	// Active is false once the run has been ended.
	Active bool `json:"active"`

	// CreatedAt and UpdatedAt are maintained by the store.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists assistant runs.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts a new run record. Creating an existing RunID is
	// an error.
	Create(ctx context.Context, rec RunRecord) error

	// Read returns the run record for an ID. Returns ErrNotFound if
	// the run does not exist.
	Read(ctx context.Context, runID string) (RunRecord, error)

	// Upsert writes the record, inserting or overwriting.
	Upsert(ctx context.Context, rec RunRecord) error

	// End marks a run inactive. Ending a missing run returns
	// ErrNotFound; ending an already-ended run is a no-op.
	End(ctx context.Context, runID string) error

	// ListRuns returns run IDs for a user, most recently updated
	// first. Empty userID lists all runs.
	ListRuns(ctx context.Context, userID string) ([]string, error)

	// Close releases store resources. After Close all operations
	// return an error.
	Close() error
}
