package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome labels how an export ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Entry is one finished export.
type Entry struct {
	ID          int64
	JobID       string
	VideoPath   string
	OutputPath  string
	Composition string
	Style       string
	Outcome     Outcome
	ErrorKind   string
	ErrorDetail string
	BRollTotal  int
	BRollFailed int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration is the wall time the export took.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Store manages export history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS exports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL,
    video_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    composition TEXT NOT NULL,
    style TEXT NOT NULL,
    outcome TEXT NOT NULL,
    error_kind TEXT,
    error_detail TEXT,
    broll_total INTEGER NOT NULL DEFAULT 0,
    broll_failed INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_finished_at ON exports(finished_at);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply history schema: %w", err)
	}
	return nil
}

// Record inserts a terminal export outcome.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO exports (
            job_id, video_path, output_path, composition, style, outcome,
            error_kind, error_detail, broll_total, broll_failed,
            started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.JobID,
		entry.VideoPath,
		entry.OutputPath,
		entry.Composition,
		entry.Style,
		string(entry.Outcome),
		nullableString(entry.ErrorKind),
		nullableString(entry.ErrorDetail),
		entry.BRollTotal,
		entry.BRollFailed,
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert export record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// List returns the most recent entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, job_id, video_path, output_path, composition, style,
        outcome, error_kind, error_detail, broll_total, broll_failed,
        started_at, finished_at
        FROM exports ORDER BY finished_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry       Entry
		outcome     string
		errorKind   sql.NullString
		errorDetail sql.NullString
		startedAt   string
		finishedAt  string
	)
	if err := rows.Scan(
		&entry.ID,
		&entry.JobID,
		&entry.VideoPath,
		&entry.OutputPath,
		&entry.Composition,
		&entry.Style,
		&outcome,
		&errorKind,
		&errorDetail,
		&entry.BRollTotal,
		&entry.BRollFailed,
		&startedAt,
		&finishedAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan export row: %w", err)
	}
	entry.Outcome = Outcome(outcome)
	entry.ErrorKind = errorKind.String
	entry.ErrorDetail = errorDetail.String
	entry.StartedAt = parseTimestamp(startedAt)
	entry.FinishedAt = parseTimestamp(finishedAt)
	return entry, nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
