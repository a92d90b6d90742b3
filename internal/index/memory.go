package index

import (
	"context"
	"fmt"
	"sync"

	"vaultorg/internal/organize"
)

// MemoryIndex is an in-memory implementation of organize.ChecksumIndex.
// It provides the same atomic insert-if-absent semantics under a mutex,
// making it useful for tests and dry runs. Nothing survives the process.
type MemoryIndex struct {
	mu        sync.RWMutex
	entries   map[string]organize.ChecksumEntry
	dupBytes  int64
	dupCount  int64
	decisions []*organize.OrganizationDecision
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]organize.ChecksumEntry)}
}

// Lookup returns the entry for checksum, or nil.
func (m *MemoryIndex) Lookup(_ context.Context, checksum string) (*organize.ChecksumEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[checksum]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Register inserts the entry unless the checksum is already present.
func (m *MemoryIndex) Register(_ context.Context, entry organize.ChecksumEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[entry.Checksum]; exists {
		return fmt.Errorf("checksum %s: %w", entry.Checksum, organize.ErrAlreadyExists)
	}
	m.entries[entry.Checksum] = entry
	return nil
}

// RecordDuplicate tallies a duplicate sighting.
func (m *MemoryIndex) RecordDuplicate(_ context.Context, _, _ string, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dupCount++
	m.dupBytes += size
	return nil
}

// SaveDecision appends a copy of the decision to the audit log.
func (m *MemoryIndex) SaveDecision(_ context.Context, d *organize.OrganizationDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *d
	m.decisions = append(m.decisions, &saved)
	return nil
}

// Decisions returns the saved decisions in append order. Test helper.
func (m *MemoryIndex) Decisions() []*organize.OrganizationDecision {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*organize.OrganizationDecision, len(m.decisions))
	copy(out, m.decisions)
	return out
}

// Stats reports current counts.
func (m *MemoryIndex) Stats(_ context.Context) (organize.IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := organize.IndexStats{
		UniqueFiles:       int64(len(m.entries)),
		DuplicateFiles:    m.dupCount,
		DeduplicatedBytes: m.dupBytes,
		Decisions:         int64(len(m.decisions)),
	}
	for _, e := range m.entries {
		stats.UniqueBytes += e.Size
	}
	return stats, nil
}

// Close is a no-op for the in-memory index.
func (m *MemoryIndex) Close() error { return nil }

var _ organize.ChecksumIndex = (*MemoryIndex)(nil)
