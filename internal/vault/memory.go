package vault

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"vaultorg/internal/organize"
)

// MemoryMaterializer records directory creations in memory. It is used
// in tests and anywhere a real filesystem is unwanted.
type MemoryMaterializer struct {
	mu   sync.Mutex
	dirs map[string]bool
}

func NewMemoryMaterializer() *MemoryMaterializer {
	return &MemoryMaterializer{dirs: make(map[string]bool)}
}

func (m *MemoryMaterializer) EnsureDirectory(ctx context.Context, path string) (organize.CreationResult, error) {
	if err := ctx.Err(); err != nil {
		return organize.CreationResult{}, err
	}

	cleaned := filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirs[cleaned] {
		return organize.CreationResult{Path: cleaned, Created: false}, nil
	}
	m.dirs[cleaned] = true
	return organize.CreationResult{Path: cleaned, Created: true}, nil
}

// Has reports whether path has been created.
func (m *MemoryMaterializer) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[filepath.Clean(path)]
}

// Count returns the number of distinct directories created.
func (m *MemoryMaterializer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirs)
}

var _ organize.Materializer = (*MemoryMaterializer)(nil)

// NewMaterializerFromConfig creates a materializer for the given vault
// root. An empty root selects the in-memory backend.
func NewMaterializerFromConfig(vaultRoot string) (organize.Materializer, error) {
	if vaultRoot == "" {
		return NewMemoryMaterializer(), nil
	}
	root, err := filepath.Abs(vaultRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	return NewFilesystemMaterializer(root)
}
