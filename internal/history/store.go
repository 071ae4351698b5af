// Package history records completed plugin invocations in SQLite. It is
// host-side bookkeeping only; plugins themselves stay stateless across
// invocations.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mattjoyce/sprocket/internal/invoke"
)

// Record is one stored invocation.
type Record struct {
	ID          string
	Plugin      string
	Action      string
	Params      string // params JSON as sent
	Outcome     invoke.Outcome
	ExitCode    int
	Error       string
	DurationMS  int64
	StartedAt   time.Time
	CompletedAt time.Time
}

// Store persists invocation records.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the SQLite database at path and ensures
// required tables exist.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS invocation_log (
  id           TEXT PRIMARY KEY,
  plugin       TEXT NOT NULL,
  action       TEXT NOT NULL,
  params       JSON,
  outcome      TEXT NOT NULL,
  exit_code    INTEGER NOT NULL,
  error        TEXT,
  duration_ms  INTEGER NOT NULL,
  started_at   TEXT NOT NULL,
  completed_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS invocation_log_plugin_started_at_idx ON invocation_log(plugin, started_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}

// Append stores one completed invocation.
func (s *Store) Append(ctx context.Context, inv *invoke.Invocation) error {
	params, err := json.Marshal(inv.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	completedAt := inv.StartedAt.Add(inv.Duration)
	_, err = s.db.ExecContext(ctx, `
INSERT INTO invocation_log(
  id, plugin, action, params, outcome, exit_code, error, duration_ms, started_at, completed_at
)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		inv.ID, inv.Plugin, inv.Action, string(params), string(inv.Outcome), inv.ExitCode,
		nullable(inv.ErrorMessage()), inv.Duration.Milliseconds(),
		inv.StartedAt.UTC().Format(time.RFC3339Nano), completedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append invocation: %w", err)
	}
	return nil
}

// Recent returns up to limit records for a plugin, newest first. An empty
// plugin name returns records across all plugins.
func (s *Store) Recent(ctx context.Context, plugin string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
SELECT id, plugin, action, params, outcome, exit_code, error, duration_ms, started_at, completed_at
FROM invocation_log
`
	args := []any{}
	if plugin != "" {
		query += "WHERE plugin = ?\n"
		args = append(args, plugin)
	}
	query += "ORDER BY started_at DESC, rowid DESC LIMIT ?;"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r           Record
			params      sql.NullString
			errMsg      sql.NullString
			outcome     string
			startedAt   string
			completedAt string
		)
		if err := rows.Scan(&r.ID, &r.Plugin, &r.Action, &params, &outcome, &r.ExitCode, &errMsg, &r.DurationMS, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		r.Params = params.String
		r.Error = errMsg.String
		r.Outcome = invoke.Outcome(outcome)
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, completedAt); err == nil {
			r.CompletedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
