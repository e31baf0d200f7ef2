// Package history keeps a local SQLite log of the bumps, builds and
// deploys performed in a project.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultLimit is the number of records Recent returns for limit <= 0.
const DefaultLimit = 20

// Kind identifies the operation that produced a record.
type Kind string

const (
	KindBump   Kind = "bump"
	KindBuild  Kind = "build"
	KindDeploy Kind = "deploy"
)

// ReleaseRecord is one row of the release log.
type ReleaseRecord struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Version   string    `json:"version"`
	Previous  string    `json:"previous,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	Commit    string    `json:"commit,omitempty"`
	Branch    string    `json:"branch,omitempty"`
	Target    string    `json:"target,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is a SQLite-backed release log.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating when needed) the release log at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Record appends rec and returns its id. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, rec ReleaseRecord) (int64, error) {
	if rec.Kind == "" {
		return 0, errors.New("record kind is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO releases (
			kind, version, previous, tag, commit_sha, branch, target, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(rec.Kind), rec.Version, rec.Previous, rec.Tag, rec.Commit, rec.Branch,
		rec.Target, rec.Reason, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("recording %s: %w", rec.Kind, err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ReleaseRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, version, COALESCE(previous, ''), COALESCE(tag, ''),
			COALESCE(commit_sha, ''), COALESCE(branch, ''), COALESCE(target, ''),
			COALESCE(reason, ''), created_at
		FROM releases
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []ReleaseRecord
	for rows.Next() {
		var (
			rec       ReleaseRecord
			kind      string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.Version, &rec.Previous, &rec.Tag,
			&rec.Commit, &rec.Branch, &rec.Target, &rec.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Kind = Kind(kind)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
