package store

import (
	"context"
	"errors"
	"testing"
)

// storeUnderTest lets the same suite run against every Store
// implementation.
type storeUnderTest struct {
	name string
	make func(t *testing.T) Store
}

func implementations() []storeUnderTest {
	return []storeUnderTest{
		{
			name: "MemStore",
			make: func(t *testing.T) Store {
				return NewMemStore()
			},
		},
		{
			name: "SQLiteStore",
			make: func(t *testing.T) Store {
				st, err := NewSQLiteStore(":memory:")
				if err != nil {
					t.Fatalf("failed to create SQLite store: %v", err)
				}
				return st
			},
		},
	}
}

func TestStore_CreateAndRead(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			st := impl.make(t)
			defer st.Close()

			rec := RunRecord{
				RunID:  "run-001",
				Name:   "Test Run",
				UserID: "user-1",
				Memory: []byte(`{"chat_history":[]}`),
				Meta:   []byte(`{"env":"test"}`),
				Active: true,
			}
			if err := st.Create(ctx, rec); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			got, err := st.Read(ctx, "run-001")
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if got.RunID != "run-001" {
				t.Errorf("expected RunID = 'run-001', got %q", got.RunID)
			}
			if got.Name != "Test Run" {
				t.Errorf("expected Name = 'Test Run', got %q", got.Name)
			}
			if got.UserID != "user-1" {
				t.Errorf("expected UserID = 'user-1', got %q", got.UserID)
			}
			if string(got.Memory) != `{"chat_history":[]}` {
				t.Errorf("unexpected Memory: %s", got.Memory)
			}
			if string(got.Meta) != `{"env":"test"}` {
				t.Errorf("unexpected Meta: %s", got.Meta)
			}
			if !got.Active {
				t.Error("expected Active = true")
			}
			if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
				t.Error("expected timestamps to be set")
			}

			// Reading a missing run returns ErrNotFound.
			_, err = st.Read(ctx, "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got: %v", err)
			}
		})
	}
}

func TestStore_Upsert(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			st := impl.make(t)
			defer st.Close()

			// Upsert on a missing run inserts it.
			rec := RunRecord{RunID: "run-001", Name: "v1", Active: true}
			if err := st.Upsert(ctx, rec); err != nil {
				t.Fatalf("Upsert (insert) failed: %v", err)
			}

			// Upsert on an existing run overwrites it.
			rec.Name = "v2"
			rec.Memory = []byte(`{"chat_history":[{"role":"user","content":"hi"}]}`)
			if err := st.Upsert(ctx, rec); err != nil {
				t.Fatalf("Upsert (update) failed: %v", err)
			}

			got, err := st.Read(ctx, "run-001")
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if got.Name != "v2" {
				t.Errorf("expected Name = 'v2', got %q", got.Name)
			}
			if len(got.Memory) == 0 {
				t.Error("expected Memory to be overwritten")
			}
		})
	}
}

func TestStore_End(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			st := impl.make(t)
			defer st.Close()

			rec := RunRecord{RunID: "run-001", Active: true}
			if err := st.Create(ctx, rec); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			if err := st.End(ctx, "run-001"); err != nil {
				t.Fatalf("End failed: %v", err)
			}
			got, err := st.Read(ctx, "run-001")
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if got.Active {
				t.Error("expected Active = false after End")
			}

			// Ending an already-ended run is a no-op.
			if err := st.End(ctx, "run-001"); err != nil {
				t.Errorf("End (repeat) failed: %v", err)
			}

			// Ending a missing run returns ErrNotFound.
			if err := st.End(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got: %v", err)
			}
		})
	}
}

func TestStore_ListRuns(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			st := impl.make(t)
			defer st.Close()

			records := []RunRecord{
				{RunID: "run-a", UserID: "alice", Active: true},
				{RunID: "run-b", UserID: "bob", Active: true},
				{RunID: "run-c", UserID: "alice", Active: true},
			}
			for _, rec := range records {
				if err := st.Create(ctx, rec); err != nil {
					t.Fatalf("Create %s failed: %v", rec.RunID, err)
				}
			}

			ids, err := st.ListRuns(ctx, "alice")
			if err != nil {
				t.Fatalf("ListRuns failed: %v", err)
			}
			if len(ids) != 2 {
				t.Fatalf("expected 2 runs for alice, got %d: %v", len(ids), ids)
			}
			for _, id := range ids {
				if id != "run-a" && id != "run-c" {
					t.Errorf("unexpected run for alice: %s", id)
				}
			}

			// Empty user ID lists all runs.
			all, err := st.ListRuns(ctx, "")
			if err != nil {
				t.Fatalf("ListRuns (all) failed: %v", err)
			}
			if len(all) != 3 {
				t.Errorf("expected 3 runs total, got %d", len(all))
			}

			// Unknown user yields no runs.
			none, err := st.ListRuns(ctx, "nobody")
			if err != nil {
				t.Fatalf("ListRuns (unknown user) failed: %v", err)
			}
			if len(none) != 0 {
				t.Errorf("expected 0 runs for unknown user, got %d", len(none))
			}
		})
	}
}

func TestStore_ClosedErrors(t *testing.T) {
	ctx := context.Background()
	for _, impl := range implementations() {
		t.Run(impl.name, func(t *testing.T) {
			st := impl.make(t)
			if err := st.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			if err := st.Create(ctx, RunRecord{RunID: "x"}); err == nil {
				t.Error("expected Create to fail on closed store")
			}
			if _, err := st.Read(ctx, "x"); err == nil {
				t.Error("expected Read to fail on closed store")
			}
			if err := st.Upsert(ctx, RunRecord{RunID: "x"}); err == nil {
				t.Error("expected Upsert to fail on closed store")
			}
			if err := st.End(ctx, "x"); err == nil {
				t.Error("expected End to fail on closed store")
			}
			if _, err := st.ListRuns(ctx, ""); err == nil {
				t.Error("expected ListRuns to fail on closed store")
			}

			// Double close is a no-op.
			if err := st.Close(); err != nil {
				t.Errorf("expected double Close to succeed, got: %v", err)
			}
		})
	}
}

func TestStore_InterfaceCompliance(t *testing.T) {
	var _ Store = (*MemStore)(nil)
	var _ Store = (*SQLiteStore)(nil)
	var _ Store = (*MySQLStore)(nil)
}
