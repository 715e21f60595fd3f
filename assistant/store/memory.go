package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store.
//
// Designed for:
//   - Testing without a database
//   - Ephemeral assistants that don't need persistence
//
// All data is lost when the process exits.
type MemStore struct {
	mu     sync.RWMutex
	runs   map[string]RunRecord
	closed bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[string]RunRecord)}
}

// Create inserts a new run record.
func (s *MemStore) Create(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	if _, ok := s.runs[rec.RunID]; ok {
		return fmt.Errorf("run %s already exists", rec.RunID)
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.runs[rec.RunID] = clone(rec)
	return nil
}

// Read returns the record for a run ID.
func (s *MemStore) Read(_ context.Context, runID string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return RunRecord{}, fmt.Errorf("store is closed")
	}
	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, ErrNotFound
	}
	return clone(rec), nil
}

// Upsert writes the record, inserting or overwriting.
func (s *MemStore) Upsert(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}

	now := time.Now().UTC()
	if existing, ok := s.runs[rec.RunID]; ok {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.runs[rec.RunID] = clone(rec)
	return nil
}

// End marks a run inactive.
func (s *MemStore) End(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	rec, ok := s.runs[runID]
	if !ok {
		return ErrNotFound
	}
	if !rec.Active {
		return nil
	}
	rec.Active = false
	rec.UpdatedAt = time.Now().UTC()
	s.runs[runID] = rec
	return nil
}

// ListRuns returns run IDs for a user, most recently updated first.
func (s *MemStore) ListRuns(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	var recs []RunRecord
	for _, rec := range s.runs {
		if userID == "" || rec.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].UpdatedAt.Equal(recs[j].UpdatedAt) {
			return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
		}
		return recs[i].RunID < recs[j].RunID
	})

	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.RunID
	}
	return ids, nil
}

// Close marks the store closed. Double-close is a no-op.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func clone(rec RunRecord) RunRecord {
	out := rec
	if rec.Memory != nil {
		out.Memory = append([]byte(nil), rec.Memory...)
	}
	if rec.Meta != nil {
		out.Meta = append([]byte(nil), rec.Meta...)
	}
	return out
}
