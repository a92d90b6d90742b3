// Package vault materializes decided directory hierarchies in the vault
// tree. Materialization is idempotent and safe under concurrent batch
// load: directory creation is "create if absent", serialized per target
// path rather than behind one global lock, so unrelated paths keep their
// parallelism.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vaultorg/internal/organize"
)

// FilesystemMaterializer creates directories on the real filesystem under
// a vault root.
type FilesystemMaterializer struct {
	root  string
	mu    sync.Mutex
	locks map[string]*sync.Mutex // lock table keyed by cleaned target path
}

// NewFilesystemMaterializer creates a materializer rooted at root. The
// root itself is created immediately so a misconfigured vault fails at
// startup, not mid-batch.
func NewFilesystemMaterializer(root string) (*FilesystemMaterializer, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating vault root: %w", err)
	}
	return &FilesystemMaterializer{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// EnsureDirectory creates the directory hierarchy at path. Already-exists
// is success, not an error. Two workers racing on the same target resolve
// through the per-path lock; MkdirAll itself tolerates the directory
// appearing between check and create.
func (m *FilesystemMaterializer) EnsureDirectory(ctx context.Context, path string) (organize.CreationResult, error) {
	if err := ctx.Err(); err != nil {
		return organize.CreationResult{}, err
	}

	cleaned := filepath.Clean(path)
	if !within(m.root, cleaned) {
		return organize.CreationResult{}, fmt.Errorf("path escapes vault root: %s", path)
	}

	lock := m.pathLock(cleaned)
	lock.Lock()
	defer lock.Unlock()

	info, err := os.Stat(cleaned)
	if err == nil {
		if !info.IsDir() {
			return organize.CreationResult{}, fmt.Errorf("target exists but is not a directory: %s", cleaned)
		}
		return organize.CreationResult{Path: cleaned, Created: false}, nil
	}
	if !os.IsNotExist(err) {
		return organize.CreationResult{}, fmt.Errorf("stat target: %w", err)
	}

	if err := os.MkdirAll(cleaned, 0755); err != nil {
		return organize.CreationResult{}, fmt.Errorf("creating directory: %w", err)
	}
	return organize.CreationResult{Path: cleaned, Created: true}, nil
}

// pathLock returns the mutex for a target path, creating it on first use.
func (m *FilesystemMaterializer) pathLock(path string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[path] = lock
	}
	return lock
}

// within reports whether path is root or inside it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

var _ organize.Materializer = (*FilesystemMaterializer)(nil)
