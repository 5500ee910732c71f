package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes. An older database must be
// deleted rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// release.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// Run status values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one pipeline execution's persisted record.
type Run struct {
	ID                int64
	CreatedAt         time.Time
	Input             string
	Kind              string
	Title             string
	Status            string
	ErrorMessage      string
	AudioSeconds      float64
	ProcessingSeconds float64
	SegmentCount      int
	Model             string
	TotalTokens       int64
	InputTokens       int64
	OutputTokens      int64
	AudioInputTokens  int64
	CostUSD           float64
	OutputDir         string
}

// Store persists run records in SQLite. Writes take a file lock so separate
// processes sharing one history file never interleave inserts.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: flock.New(path + ".lock")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SaveRun inserts the record and fills in its ID. A zero CreatedAt is set to
// the current time.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("history save: nil run")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire history lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			created_at, input, input_kind, title, status, error,
			audio_seconds, processing_seconds, segment_count, model,
			total_tokens, input_tokens, output_tokens, audio_input_tokens,
			cost_usd, output_dir
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Input, run.Kind, run.Title, run.Status, run.ErrorMessage,
		run.AudioSeconds, run.ProcessingSeconds, run.SegmentCount, run.Model,
		run.TotalTokens, run.InputTokens, run.OutputTokens, run.AudioInputTokens,
		run.CostUSD, run.OutputDir,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	run.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read run id: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, created_at, input, input_kind, title, status, error,
			audio_seconds, processing_seconds, segment_count, model,
			total_tokens, input_tokens, output_tokens, audio_input_tokens,
			cost_usd, output_dir
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(
			&run.ID, &createdAt, &run.Input, &run.Kind, &run.Title, &run.Status, &run.ErrorMessage,
			&run.AudioSeconds, &run.ProcessingSeconds, &run.SegmentCount, &run.Model,
			&run.TotalTokens, &run.InputTokens, &run.OutputTokens, &run.AudioInputTokens,
			&run.CostUSD, &run.OutputDir,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			run.CreatedAt = parsed
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
