package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ctxlaunch/ctxlaunch/internal/storage"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements storage.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs
// migrations. Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordProvision(ctx context.Context, p *storage.Provision) error {
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provisions (id, server, version, path, reused, cleanup_failures, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Server, p.Version, p.Path, boolToInt(p.Reused), p.CleanupFailures,
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting provision: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListProvisions(ctx context.Context, opts storage.ListOptions) ([]storage.Provision, error) {
	query := `SELECT id, server, version, path, reused, cleanup_failures, created_at FROM provisions`
	query, args := applyListOptions(query, opts)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing provisions: %w", err)
	}
	defer rows.Close()

	var records []storage.Provision
	for rows.Next() {
		var p storage.Provision
		var reused int
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Server, &p.Version, &p.Path, &reused,
			&p.CleanupFailures, &createdAt); err != nil {
			return nil, err
		}
		p.Reused = reused != 0
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, p)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) RecordLaunch(ctx context.Context, l *storage.Launch) error {
	l.CreatedAt = time.Now().UTC()

	args, err := json.Marshal(l.Args)
	if err != nil {
		return fmt.Errorf("marshaling args: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO launches (id, server, path, args, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Server, l.Path, string(args), l.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting launch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListLaunches(ctx context.Context, opts storage.ListOptions) ([]storage.Launch, error) {
	query := `SELECT id, server, path, args, created_at FROM launches`
	query, args := applyListOptions(query, opts)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing launches: %w", err)
	}
	defer rows.Close()

	var records []storage.Launch
	for rows.Next() {
		var l storage.Launch
		var argsJSON, createdAt string
		if err := rows.Scan(&l.ID, &l.Server, &l.Path, &argsJSON, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(argsJSON), &l.Args); err != nil {
			return nil, fmt.Errorf("unmarshaling args: %w", err)
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, l)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// applyListOptions appends the shared WHERE/ORDER/LIMIT clauses for history
// queries.
func applyListOptions(query string, opts storage.ListOptions) (string, []any) {
	var args []any
	if opts.Server != "" {
		query += ` WHERE server = ?`
		args = append(args, opts.Server)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)
	return query, args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
