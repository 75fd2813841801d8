// Package state persists run logs in a local SQLite database.
package state

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/weft-dev/weft/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// Store implements core.RunStore with SQLite storage.
type Store struct {
	dbPath string
	db     *sql.DB
}

// Open creates the database file if needed, applies migrations, and returns
// a ready store.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	// WAL keeps readers unblocked while a run is being saved.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{dbPath: dbPath, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// Table doesn't exist yet, run initial migration.
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// SaveRun implements core.RunStore. Saving the same run ID twice replaces
// the earlier record.
func (s *Store) SaveRun(ctx context.Context, log *core.RunLog) error {
	inputs, err := json.Marshal(log.Inputs)
	if err != nil {
		return core.ErrState("RUN_ENCODE_FAILED", "marshaling run inputs").WithCause(err)
	}
	outputs, err := json.Marshal(log.Outputs)
	if err != nil {
		return core.ErrState("RUN_ENCODE_FAILED", "marshaling run outputs").WithCause(err)
	}
	steps, err := json.Marshal(log.Steps)
	if err != nil {
		return core.ErrState("RUN_ENCODE_FAILED", "marshaling run steps").WithCause(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, status, inputs, outputs, steps, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			inputs = excluded.inputs,
			outputs = excluded.outputs,
			steps = excluded.steps,
			created_at = excluded.created_at,
			completed_at = excluded.completed_at
	`,
		string(log.ID), string(log.Status), string(inputs), string(outputs), string(steps),
		log.CreatedAt.UTC().Format(time.RFC3339Nano),
		log.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.ErrState("RUN_SAVE_FAILED", fmt.Sprintf("saving run %s", log.ID)).WithCause(err)
	}
	return nil
}

// LoadRun implements core.RunStore.
func (s *Store) LoadRun(ctx context.Context, id core.RunID) (*core.RunLog, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, inputs, outputs, steps, created_at, completed_at
		FROM runs WHERE id = ?
	`, string(id))

	var (
		log                    core.RunLog
		rawID, status          string
		inputs, outputs, steps string
		createdAt, completedAt string
	)
	err := row.Scan(&rawID, &status, &inputs, &outputs, &steps, &createdAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRunNotFound(string(id))
	}
	if err != nil {
		return nil, core.ErrState("RUN_LOAD_FAILED", fmt.Sprintf("loading run %s", id)).WithCause(err)
	}

	log.ID = core.RunID(rawID)
	log.Status = core.RunStatus(status)
	if err := json.Unmarshal([]byte(inputs), &log.Inputs); err != nil {
		return nil, core.ErrState("RUN_DECODE_FAILED", "unmarshaling run inputs").WithCause(err)
	}
	if err := json.Unmarshal([]byte(outputs), &log.Outputs); err != nil {
		return nil, core.ErrState("RUN_DECODE_FAILED", "unmarshaling run outputs").WithCause(err)
	}
	if err := json.Unmarshal([]byte(steps), &log.Steps); err != nil {
		return nil, core.ErrState("RUN_DECODE_FAILED", "unmarshaling run steps").WithCause(err)
	}
	if log.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, core.ErrState("RUN_DECODE_FAILED", "parsing run created_at").WithCause(err)
	}
	if log.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
		return nil, core.ErrState("RUN_DECODE_FAILED", "parsing run completed_at").WithCause(err)
	}
	return &log, nil
}

// ListRuns implements core.RunStore.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]core.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, steps, created_at, completed_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, core.ErrState("RUN_LIST_FAILED", "listing runs").WithCause(err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]core.RunSummary, 0, limit)
	for rows.Next() {
		var (
			summary core.RunSummary
			id      string
			status  string
			steps   string
		)
		if err := rows.Scan(&id, &status, &steps, &summary.CreatedAt, &summary.CompletedAt); err != nil {
			return nil, core.ErrState("RUN_LIST_FAILED", "scanning run row").WithCause(err)
		}
		summary.ID = core.RunID(id)
		summary.Status = core.RunStatus(status)

		var decoded []core.Step
		if err := json.Unmarshal([]byte(steps), &decoded); err != nil {
			return nil, core.ErrState("RUN_DECODE_FAILED", "unmarshaling run steps").WithCause(err)
		}
		summary.Steps = len(decoded)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, core.ErrState("RUN_LIST_FAILED", "iterating run rows").WithCause(err)
	}
	return summaries, nil
}

var _ core.RunStore = (*Store)(nil)
