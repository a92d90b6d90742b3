package testutil

import (
	"path/filepath"
	"testing"

	"vaultorg/internal/index"
)

// NewTestIndex creates a file-backed SQLite index in a temp directory
// with the schema applied. A file (not :memory:) so concurrent access
// from multiple goroutines goes through one shared database. The index
// is closed when the test completes.
func NewTestIndex(t *testing.T) *index.SQLiteIndex {
	t.Helper()

	idx, err := index.NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("failed to create test index: %v", err)
	}

	t.Cleanup(func() {
		idx.Close()
	})

	return idx
}
