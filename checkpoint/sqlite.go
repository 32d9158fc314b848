package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/randalmurphal/issueflow/workflow"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	id         TEXT PRIMARY KEY,
	thread_id  TEXT NOT NULL,
	step       INTEGER NOT NULL,
	state      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (thread_id, step)
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_thread ON checkpoints (thread_id, step);
`

// SQLiteSaver stores checkpoints in a SQLite database. States are
// serialized as JSON, so open-ended values come back as JSON types.
type SQLiteSaver struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a checkpoint database at path.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSaver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create checkpoint schema: %w", err)
	}
	return &SQLiteSaver{db: db}, nil
}

// Close closes the database.
func (s *SQLiteSaver) Close() error {
	return s.db.Close()
}

// Get returns the thread's latest state.
func (s *SQLiteSaver) Get(ctx context.Context, threadID string) (workflow.State, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM checkpoints WHERE thread_id = ? ORDER BY step DESC LIMIT 1`,
		threadID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.State{}, false, nil
	}
	if err != nil {
		return workflow.State{}, false, fmt.Errorf("get checkpoint %s: %w", threadID, err)
	}

	var state workflow.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return workflow.State{}, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return state, true, nil
}

// Put appends state as the thread's next checkpoint.
func (s *SQLiteSaver) Put(ctx context.Context, threadID string, state workflow.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkpoint tx: %w", err)
	}
	defer tx.Rollback()

	var step int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(step), -1) + 1 FROM checkpoints WHERE thread_id = ?`,
		threadID).Scan(&step); err != nil {
		return fmt.Errorf("next checkpoint step: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoints (id, thread_id, step, state, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), threadID, step, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("insert checkpoint: %w", err)
	}

	return tx.Commit()
}

// List returns the thread's checkpoints in step order.
func (s *SQLiteSaver) List(ctx context.Context, threadID string) ([]Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, step, state, created_at FROM checkpoints WHERE thread_id = ? ORDER BY step`,
		threadID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints %s: %w", threadID, err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var (
			cp  Checkpoint
			raw string
			at  time.Time
		)
		if err := rows.Scan(&cp.ID, &cp.Step, &raw, &at); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &cp.State); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		cp.ThreadID = threadID
		cp.CreatedAt = at
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Threads returns the distinct thread ids, sorted.
func (s *SQLiteSaver) Threads(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT thread_id FROM checkpoints ORDER BY thread_id`)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete drops a thread's history.
func (s *SQLiteSaver) Delete(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("delete checkpoints %s: %w", threadID, err)
	}
	return nil
}

var (
	_ Saver  = (*SQLiteSaver)(nil)
	_ Lister = (*SQLiteSaver)(nil)
)
