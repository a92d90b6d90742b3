package index

import (
	"fmt"
	"os"
	"path/filepath"

	"vaultorg/internal/config"
	"vaultorg/internal/organize"
)

// NewIndexFromConfig creates a ChecksumIndex implementation based on the
// index config type.
func NewIndexFromConfig(cfg config.IndexConfig) (organize.ChecksumIndex, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite index")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating index data directory: %w", err)
		}
		return NewSQLiteIndex(filepath.Join(cfg.DataDir, "index.db"))
	case "memory":
		return NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unknown index type: %s", cfg.Type)
	}
}
