package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store.
//
// It keeps assistant runs in a single-file database. Designed for:
//   - Development and testing with zero setup
//   - Single-process assistants
//   - Local assistants requiring persistence
//
// SQLiteStore uses WAL mode for concurrent reads.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore creates a new SQLite-backed run store.
//
// The path parameter specifies the database file location:
//   - "./assistant.db" - file in current directory
//   - ":memory:" - in-memory database (data lost on close)
//
// The store automatically creates the database file and tables, and
// enables WAL mode.
//
// Example:
//
//	st, err := NewSQLiteStore("./assistant.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{
		db:   db,
		path: path,
	}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	runsTable := `
		CREATE TABLE IF NOT EXISTS assistant_runs (
			run_id TEXT NOT NULL PRIMARY KEY,
			name TEXT DEFAULT '',
			user_id TEXT DEFAULT '',
			memory TEXT DEFAULT '',
			meta TEXT DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, runsTable); err != nil {
		return fmt.Errorf("failed to create assistant_runs table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_runs_user ON assistant_runs(user_id, updated_at)"); err != nil {
		return fmt.Errorf("failed to create idx_runs_user: %w", err)
	}
	return nil
}

// Create inserts a new run record.
func (s *SQLiteStore) Create(ctx context.Context, rec RunRecord) error {
	if err := s.check(); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO assistant_runs (run_id, name, user_id, memory, meta, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.RunID, rec.Name, rec.UserID, string(rec.Memory), string(rec.Meta),
		boolToInt(rec.Active), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// Read returns the record for a run ID.
func (s *SQLiteStore) Read(ctx context.Context, runID string) (RunRecord, error) {
	if err := s.check(); err != nil {
		return RunRecord{}, err
	}

	query := `
		SELECT run_id, name, user_id, memory, meta, active, created_at, updated_at
		FROM assistant_runs
		WHERE run_id = ?
	`
	var (
		rec        RunRecord
		memory     string
		meta       string
		active     int
		createdStr string
		updatedStr string
	)
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&rec.RunID, &rec.Name, &rec.UserID, &memory, &meta, &active, &createdStr, &updatedStr,
	)
	if err == sql.ErrNoRows {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to read run: %w", err)
	}

	rec.Memory = []byte(memory)
	rec.Meta = []byte(meta)
	rec.Active = active != 0
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
		return RunRecord{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedStr); err != nil {
		return RunRecord{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return rec, nil
}

// Upsert writes the record, inserting or overwriting.
func (s *SQLiteStore) Upsert(ctx context.Context, rec RunRecord) error {
	if err := s.check(); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `
		INSERT INTO assistant_runs (run_id, name, user_id, memory, meta, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			name = excluded.name,
			user_id = excluded.user_id,
			memory = excluded.memory,
			meta = excluded.meta,
			active = excluded.active,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.RunID, rec.Name, rec.UserID, string(rec.Memory), string(rec.Meta),
		boolToInt(rec.Active), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert run: %w", err)
	}
	return nil
}

// End marks a run inactive.
func (s *SQLiteStore) End(ctx context.Context, runID string) error {
	if err := s.check(); err != nil {
		return err
	}

	query := `
		UPDATE assistant_runs
		SET active = 0, updated_at = ?
		WHERE run_id = ?
	`
	res, err := s.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return fmt.Errorf("failed to end run: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end run: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRuns returns run IDs for a user, most recently updated first.
func (s *SQLiteStore) ListRuns(ctx context.Context, userID string) ([]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	query := `
		SELECT run_id FROM assistant_runs
		WHERE (? = '' OR user_id = ?)
		ORDER BY updated_at DESC, run_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return ids, nil
}

// Close closes the database connection. Double-close is a no-op.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

func (s *SQLiteStore) check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
