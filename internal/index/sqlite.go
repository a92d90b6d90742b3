// Package index implements the persistent checksum registry and decision
// audit log backing deduplication.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"vaultorg/internal/index/migrations"
	"vaultorg/internal/organize"
)

// SQLiteIndex implements organize.ChecksumIndex on SQLite. The checksum
// column's primary-key constraint provides the atomic insert-if-absent
// semantics Register requires: under concurrent registration of the same
// checksum exactly one INSERT commits and the rest fail with a constraint
// violation.
type SQLiteIndex struct {
	db   *sql.DB
	path string
}

// NewSQLiteIndex opens (or creates) the index database at path and brings
// its schema up to date. path may be ":memory:" for tests.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating index database: %w", err)
	}
	return &SQLiteIndex{db: db, path: path}, nil
}

// NewSQLiteIndexFromDB wraps an existing connection. The caller is
// responsible for the schema and for closing the connection.
func NewSQLiteIndexFromDB(db *sql.DB) *SQLiteIndex {
	return &SQLiteIndex{db: db}
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the index needs. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys default to OFF in SQLite for backward compatibility.
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if path != ":memory:" {
		// WAL lets batch workers read while one writer commits.
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return db, nil
}

// Lookup returns the first-sighting entry for checksum, or nil if the
// checksum has never been registered.
func (s *SQLiteIndex) Lookup(ctx context.Context, checksum string) (*organize.ChecksumEntry, error) {
	var entry organize.ChecksumEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT checksum, path, size, first_seen FROM checksums WHERE checksum = ?`,
		checksum,
	).Scan(&entry.Checksum, &entry.Path, &entry.Size, &entry.FirstSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not seen
	}
	if err != nil {
		return nil, fmt.Errorf("looking up checksum: %w", err)
	}
	return &entry, nil
}

// Register inserts the first-sighting entry. A concurrent or earlier
// registration of the same checksum yields organize.ErrAlreadyExists; the
// existing entry is never overwritten.
func (s *SQLiteIndex) Register(ctx context.Context, entry organize.ChecksumEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checksums (checksum, path, size, first_seen) VALUES (?, ?, ?, ?)`,
		entry.Checksum, entry.Path, entry.Size, entry.FirstSeen,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("checksum %s: %w", entry.Checksum, organize.ErrAlreadyExists)
		}
		return fmt.Errorf("registering checksum: %w", err)
	}
	return nil
}

// RecordDuplicate appends a duplicate sighting for statistics.
func (s *SQLiteIndex) RecordDuplicate(ctx context.Context, checksum, path string, size int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO duplicate_sightings (checksum, path, size, seen_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		checksum, path, size,
	)
	if err != nil {
		return fmt.Errorf("recording duplicate sighting: %w", err)
	}
	return nil
}

// SaveDecision appends an organization decision to the audit log.
func (s *SQLiteIndex) SaveDecision(ctx context.Context, d *organize.OrganizationDecision) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (
			id, source_path, checksum, size, mime, detection,
			category, subcategory, confidence, rationale,
			date_source, date_confidence, local_date, target_path,
			duplicate, duplicate_of, status, error, decided_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.File.SourcePath, d.File.Checksum, d.File.Size,
		d.Detected.MIME, string(d.Detected.Method),
		string(d.Classification.Category), d.Classification.Subcategory,
		d.Classification.Confidence, d.Classification.Rationale,
		string(d.Date.Source), d.Date.Confidence, d.Date.Local.String(),
		d.Path.Absolute, d.Duplicate, d.DuplicateOf,
		string(d.Status), d.Error, d.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("saving decision: %w", err)
	}
	return nil
}

// Stats reports counts over committed state only: SQLite's default
// isolation means uncommitted work from a crashed batch is invisible here.
func (s *SQLiteIndex) Stats(ctx context.Context) (organize.IndexStats, error) {
	var stats organize.IndexStats

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM checksums`,
	).Scan(&stats.UniqueFiles, &stats.UniqueBytes)
	if err != nil {
		return stats, fmt.Errorf("counting checksums: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM duplicate_sightings`,
	).Scan(&stats.DuplicateFiles, &stats.DeduplicatedBytes)
	if err != nil {
		return stats, fmt.Errorf("counting duplicate sightings: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decisions`).Scan(&stats.Decisions); err != nil {
		return stats, fmt.Errorf("counting decisions: %w", err)
	}
	return stats, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteIndex) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ organize.ChecksumIndex = (*SQLiteIndex)(nil)
