package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"vaultorg/internal/organize"
)

func TestMemoryIndex_RegisterAndLookup(t *testing.T) {
	t.Parallel()
	idx := NewMemoryIndex()
	ctx := context.Background()

	got, err := idx.Lookup(ctx, "abc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("Lookup on empty index = %+v, want nil", got)
	}

	if err := idx.Register(ctx, entry("abc", "/a.jpg", 100)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err = idx.Lookup(ctx, "abc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil || got.Path != "/a.jpg" {
		t.Errorf("entry = %+v, want /a.jpg", got)
	}

	if err := idx.Register(ctx, entry("abc", "/b.jpg", 100)); !errors.Is(err, organize.ErrAlreadyExists) {
		t.Errorf("second Register error = %v, want ErrAlreadyExists", err)
	}
}

func TestMemoryIndex_ConcurrentRegisterOneWinner(t *testing.T) {
	t.Parallel()
	idx := NewMemoryIndex()
	ctx := context.Background()

	const workers = 32
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = idx.Register(ctx, entry("contended", "/w.jpg", 1))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, organize.ErrAlreadyExists) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("got %d successful registrations, want exactly 1", winners)
	}
}

func TestMemoryIndex_StatsAndDecisions(t *testing.T) {
	t.Parallel()
	idx := NewMemoryIndex()
	ctx := context.Background()

	if err := idx.Register(ctx, entry("abc", "/a.jpg", 300)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := idx.RecordDuplicate(ctx, "abc", "/copy.jpg", 300); err != nil {
		t.Fatalf("RecordDuplicate: %v", err)
	}

	d := &organize.OrganizationDecision{ID: "id-1", Status: organize.DecisionSuccess}
	if err := idx.SaveDecision(ctx, d); err != nil {
		t.Fatalf("SaveDecision: %v", err)
	}

	// Mutating the original after save must not affect the stored copy.
	d.Status = organize.DecisionFailed
	if got := idx.Decisions(); len(got) != 1 || got[0].Status != organize.DecisionSuccess {
		t.Errorf("stored decision mutated: %+v", got)
	}

	stats, err := idx.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.UniqueFiles != 1 || stats.UniqueBytes != 300 {
		t.Errorf("unique stats = %d/%d, want 1/300", stats.UniqueFiles, stats.UniqueBytes)
	}
	if stats.DuplicateFiles != 1 || stats.DeduplicatedBytes != 300 {
		t.Errorf("duplicate stats = %d/%d, want 1/300", stats.DuplicateFiles, stats.DeduplicatedBytes)
	}
	if stats.Decisions != 1 {
		t.Errorf("Decisions = %d, want 1", stats.Decisions)
	}
}
