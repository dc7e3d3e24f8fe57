package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS builds (
	number         INTEGER PRIMARY KEY,
	id             TEXT NOT NULL,
	built_at       TEXT NOT NULL,
	latest_commit  TEXT,
	entries        INTEGER NOT NULL,
	changelog_path TEXT NOT NULL
);
`

// SQLiteStore is the default durable backend: one table of build
// records in a single database file.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// OpenSQLite opens (and if needed initializes) the database at path.
func OpenSQLite(path string, log *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create builds schema: %w", err)
	}

	log.Debugw("sqlite store opened", "path", path)
	return &SQLiteStore{db: db, log: log}, nil
}

// SaveBuild records one build.
func (s *SQLiteStore) SaveBuild(ctx context.Context, rec *BuildRecord) error {
	var latest sql.NullString
	if rec.LatestCommit != nil {
		latest = sql.NullString{String: rec.LatestCommit.Format(time.RFC3339Nano), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds (number, id, built_at, latest_commit, entries, changelog_path)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			id = excluded.id,
			built_at = excluded.built_at,
			latest_commit = excluded.latest_commit,
			entries = excluded.entries,
			changelog_path = excluded.changelog_path`,
		rec.Number, rec.ID, rec.BuiltAt.Format(time.RFC3339Nano), latest, rec.Entries, rec.ChangelogPath)
	if err != nil {
		return fmt.Errorf("save build %d: %w", rec.Number, err)
	}
	return nil
}

// LatestBuild returns the highest-numbered record.
func (s *SQLiteStore) LatestBuild(ctx context.Context) (*BuildRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT number, id, built_at, latest_commit, entries, changelog_path
		FROM builds ORDER BY number DESC LIMIT 1`)

	rec, err := scanBuild(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBuilds
	}
	if err != nil {
		return nil, fmt.Errorf("load latest build: %w", err)
	}
	return rec, nil
}

// ListBuilds returns up to limit records, newest first.
func (s *SQLiteStore) ListBuilds(ctx context.Context, limit int) ([]*BuildRecord, error) {
	query := `
		SELECT number, id, built_at, latest_commit, entries, changelog_path
		FROM builds ORDER BY number DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var recs []*BuildRecord
	for rows.Next() {
		rec, err := scanBuild(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanBuild(scan func(...any) error) (*BuildRecord, error) {
	var (
		rec     BuildRecord
		builtAt string
		latest  sql.NullString
	)
	if err := scan(&rec.Number, &rec.ID, &builtAt, &latest, &rec.Entries, &rec.ChangelogPath); err != nil {
		return nil, err
	}

	when, err := time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return nil, fmt.Errorf("parse built_at %q: %w", builtAt, err)
	}
	rec.BuiltAt = when

	if latest.Valid {
		t, err := time.Parse(time.RFC3339Nano, latest.String)
		if err != nil {
			return nil, fmt.Errorf("parse latest_commit %q: %w", latest.String, err)
		}
		rec.LatestCommit = &t
	}
	return &rec, nil
}

// Compile-time interface conformance check.
var _ Store = (*SQLiteStore)(nil)
