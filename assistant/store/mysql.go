package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store.
//
// It keeps assistant runs in a relational database. Designed for:
//   - Production assistants requiring persistence
//   - Multi-process deployments sharing one run table
//   - Audit trails of user conversations
//
// MySQLStore uses connection pooling for reliability.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore creates a new MySQL-backed run store.
//
// The DSN (Data Source Name) format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// Example DSNs:
//
//	user:password@tcp(localhost:3306)/assistant?parseTime=true
//
// The parseTime=true parameter is required so timestamps scan into
// time.Time.
//
// Never hardcode credentials in source code. Read the DSN from the
// environment:
//
//	dsn := os.Getenv("MYSQL_DSN")
//	st, err := NewMySQLStore(dsn)
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (m *MySQLStore) createTables(ctx context.Context) error {
	runsTable := `
		CREATE TABLE IF NOT EXISTS assistant_runs (
			run_id VARCHAR(64) NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL DEFAULT '',
			user_id VARCHAR(255) NOT NULL DEFAULT '',
			memory JSON NULL,
			meta JSON NULL,
			active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
			INDEX idx_runs_user (user_id, updated_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := m.db.ExecContext(ctx, runsTable); err != nil {
		return fmt.Errorf("failed to create assistant_runs table: %w", err)
	}
	return nil
}

// Create inserts a new run record.
func (m *MySQLStore) Create(ctx context.Context, rec RunRecord) error {
	if err := m.check(); err != nil {
		return err
	}

	query := `
		INSERT INTO assistant_runs (run_id, name, user_id, memory, meta, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := m.db.ExecContext(ctx, query,
		rec.RunID, rec.Name, rec.UserID, nullableJSON(rec.Memory), nullableJSON(rec.Meta), rec.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// Read returns the record for a run ID.
func (m *MySQLStore) Read(ctx context.Context, runID string) (RunRecord, error) {
	if err := m.check(); err != nil {
		return RunRecord{}, err
	}

	query := `
		SELECT run_id, name, user_id, memory, meta, active, created_at, updated_at
		FROM assistant_runs
		WHERE run_id = ?
	`
	var (
		rec    RunRecord
		memory sql.NullString
		meta   sql.NullString
	)
	err := m.db.QueryRowContext(ctx, query, runID).Scan(
		&rec.RunID, &rec.Name, &rec.UserID, &memory, &meta, &rec.Active,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to read run: %w", err)
	}

	if memory.Valid {
		rec.Memory = []byte(memory.String)
	}
	if meta.Valid {
		rec.Meta = []byte(meta.String)
	}
	return rec, nil
}

// Upsert writes the record, inserting or overwriting.
func (m *MySQLStore) Upsert(ctx context.Context, rec RunRecord) error {
	if err := m.check(); err != nil {
		return err
	}

	query := `
		INSERT INTO assistant_runs (run_id, name, user_id, memory, meta, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			user_id = VALUES(user_id),
			memory = VALUES(memory),
			meta = VALUES(meta),
			active = VALUES(active)
	`
	_, err := m.db.ExecContext(ctx, query,
		rec.RunID, rec.Name, rec.UserID, nullableJSON(rec.Memory), nullableJSON(rec.Meta), rec.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert run: %w", err)
	}
	return nil
}

// End marks a run inactive.
func (m *MySQLStore) End(ctx context.Context, runID string) error {
	if err := m.check(); err != nil {
		return err
	}

	res, err := m.db.ExecContext(ctx, "UPDATE assistant_runs SET active = 0 WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to end run: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end run: %w", err)
	}
	if rows == 0 {
		// Either missing or already inactive. Distinguish with a read.
		if _, err := m.Read(ctx, runID); err != nil {
			return err
		}
	}
	return nil
}

// ListRuns returns run IDs for a user, most recently updated first.
func (m *MySQLStore) ListRuns(ctx context.Context, userID string) ([]string, error) {
	if err := m.check(); err != nil {
		return nil, err
	}

	query := `
		SELECT run_id FROM assistant_runs
		WHERE (? = '' OR user_id = ?)
		ORDER BY updated_at DESC, run_id ASC
	`
	rows, err := m.db.QueryContext(ctx, query, userID, userID)
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
func (m *MySQLStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

// Ping verifies the database connection is alive.
func (m *MySQLStore) Ping(ctx context.Context) error {
	if err := m.check(); err != nil {
		return err
	}
	return m.db.PingContext(ctx)
}

func (m *MySQLStore) check() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
