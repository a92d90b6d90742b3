package organize

import (
	"context"
	"io"
	"io/fs"
)

// TypeDetector determines a file's content MIME type from a bounded byte
// prefix and its declared filename. Detection must never require more than
// PrefixSize bytes, independent of file size.
type TypeDetector interface {
	// PrefixSize is the number of leading bytes Detect needs at most.
	PrefixSize() int

	// Detect inspects the prefix (which may be shorter than PrefixSize for
	// small files) and the filename's extension.
	Detect(prefix []byte, filename string) DetectedType
}

// Extractor is a per-type metadata collaborator. Extraction failure is not
// fatal: a failed extractor contributes an empty PartialMetadata and the
// missing fields are recorded as absent downstream.
type Extractor interface {
	// Source returns the provenance tag attached to extracted fields.
	Source() string

	// Extract reads metadata for the file. Implementations may block on
	// I/O; the manager never holds a lock across this call.
	Extract(ctx context.Context, file FileRecord, detected DetectedType) (PartialMetadata, error)
}

// Consolidator merges extractor outputs into one provenance-preserving
// record. Conflicting values are kept, not collapsed.
type Consolidator interface {
	Consolidate(detected DetectedType, parts []PartialMetadata) ConsolidatedMetadata
}

// DateResolver picks the single authoritative date for a file from the
// consolidated metadata and the filename.
type DateResolver interface {
	Resolve(meta ConsolidatedMetadata, filename string) DateInfo
}

// Classifier assigns the primary category and optional subcategory.
type Classifier interface {
	Classify(detected DetectedType, meta ConsolidatedMetadata) Classification
}

// PathBuilder turns a classification and a resolved date into a concrete,
// sanitized, length-bounded vault path. Returns ErrPathTooLong (wrapped)
// when the assembled path exceeds the configured limit.
type PathBuilder interface {
	Build(c Classification, d DateInfo) (VaultPath, error)
}

// Materializer ensures decided directory hierarchies exist on disk.
// EnsureDirectory is idempotent (already-exists is success) and safe under
// concurrent invocation for the same or different paths.
type Materializer interface {
	EnsureDirectory(ctx context.Context, path string) (CreationResult, error)
}

// Path represents a validated filesystem path with cached metadata,
// produced by FilesystemManager.Resolve.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components. Primarily for use by
// FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{absPath: absPath, isDir: isDir, info: info}
}

// String returns the absolute path.
func (p *Path) String() string { return p.absPath }

// IsDir reports whether the path points to a directory.
func (p *Path) IsDir() bool { return p.isDir }

// Info returns the cached file info from when the path was resolved.
func (p *Path) Info() fs.FileInfo { return p.info }

// FilesystemManager abstracts read-side filesystem access so the manager
// is testable without touching disk.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path with cached stat info.
	Resolve(rawPath string) (*Path, error)

	// Open opens a file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// FindFiles discovers regular files under a directory, honoring the
	// configured ignore rules. When recursive is true, subdirectories are
	// included.
	FindFiles(path *Path, recursive bool) ([]*Path, error)
}
