package organize

import (
	"context"
	"time"
)

// ChecksumEntry is the persisted first-sighting record for a checksum.
// Entries are append-only: created on first sighting, read-only after.
type ChecksumEntry struct {
	Checksum  string // SHA-256 hex digest, unique key
	Path      string // First-seen absolute path
	Size      int64
	FirstSeen time.Time
}

// IndexStats reports committed registry state.
type IndexStats struct {
	UniqueFiles       int64 // Registered checksums
	UniqueBytes       int64 // Sum of registered sizes
	DuplicateFiles    int64 // Recorded duplicate sightings
	DeduplicatedBytes int64 // Bytes saved by refusing to re-process duplicates
	Decisions         int64 // Persisted decision records
}

// ChecksumIndex is the persistent registry mapping content checksum to its
// first-seen record. Register is atomic with respect to concurrent callers
// for the same checksum: exactly one caller wins and the rest observe
// ErrAlreadyExists. Implementations must be durable and transactionally
// consistent so a crash mid-batch never leaves a half-registered checksum.
type ChecksumIndex interface {
	// Lookup returns the entry for checksum, or nil if it has never been
	// seen.
	Lookup(ctx context.Context, checksum string) (*ChecksumEntry, error)

	// Register inserts the first-sighting entry for checksum. Returns
	// ErrAlreadyExists if the checksum is already registered; the existing
	// entry is never overwritten.
	Register(ctx context.Context, entry ChecksumEntry) error

	// RecordDuplicate appends a duplicate sighting so deduplication
	// statistics reflect committed state.
	RecordDuplicate(ctx context.Context, checksum, path string, size int64) error

	// SaveDecision appends an organization decision to the audit log.
	// Saved decisions are immutable; re-processing creates a new record.
	SaveDecision(ctx context.Context, d *OrganizationDecision) error

	// Stats returns counts over committed state only.
	Stats(ctx context.Context) (IndexStats, error)

	// Close releases the underlying store.
	Close() error
}
