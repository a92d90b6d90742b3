package organize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// Deps are the collaborators a Manager orchestrates. All fields are
// required except Extractors, which may be empty (downstream fields are
// then simply absent).
type Deps struct {
	Index        ChecksumIndex
	Detector     TypeDetector
	Extractors   map[string][]Extractor // keyed by extractor group; "" runs for every file
	Consolidator Consolidator
	Dates        DateResolver
	Classifier   Classifier
	Paths        PathBuilder
	Materializer Materializer
	Filesystem   FilesystemManager
	Logger       Logger
	Clock        Clock
	IDGen        IDGenerator
}

// Options tune manager behavior.
type Options struct {
	Workers int  // Batch worker pool size; defaults to 4
	Preview bool // Compute decisions without mutating anything
}

const defaultWorkers = 4

// Manager orchestrates the pipeline for single files and batches. Decide
// is pure; Materialize is the only operation that mutates shared state
// (the filesystem and the checksum registry).
type Manager struct {
	deps    Deps
	workers int
	preview bool
}

// NewManager creates a Manager with the provided dependencies.
func NewManager(deps Deps, opts Options) *Manager {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Manager{deps: deps, workers: workers, preview: opts.Preview}
}

// Preview reports whether the manager is in preview mode.
func (m *Manager) Preview() bool { return m.preview }

// Decide computes the placement decision for one file without mutating the
// filesystem or the registry. It is safe to call repeatedly and in preview
// mode: identical input yields an identical VaultPath and Classification.
//
// Per-file problems (unreadable file, over-long path) are captured on the
// decision's Error field and do not produce a Go error; the returned error
// is non-nil only when the checksum store is unreachable, which is fatal
// for the whole batch.
func (m *Manager) Decide(ctx context.Context, path *Path) (*OrganizationDecision, error) {
	d := &OrganizationDecision{
		ID: m.deps.IDGen.New(),
		File: FileRecord{
			SourcePath:   path.String(),
			Size:         path.Info().Size(),
			DiscoveredAt: m.deps.Clock.Now(),
			Status:       StatusPending,
		},
		Status:    DecisionPending,
		DecidedAt: m.deps.Clock.Now(),
	}

	checksum, prefix, err := m.checksumAndPrefix(path)
	if err != nil {
		m.failFile(d, NewStageError(StageChecksum, path.String(), err))
		return d, nil
	}
	d.File.Checksum = checksum

	// Dedup check runs before everything else: a duplicate skips the rest
	// of the pipeline entirely.
	existing, err := m.deps.Index.Lookup(ctx, checksum)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %s: %v", ErrStoreUnavailable, checksum, err)
	}
	if existing != nil {
		d.Duplicate = true
		d.DuplicateOf = existing.Path
		d.File.Status = StatusDuplicate
		m.deps.Logger.Debug("duplicate content", "path", path.String(), "first_seen", existing.Path)
		return d, nil
	}

	d.Detected = m.deps.Detector.Detect(prefix, filepath.Base(path.String()))
	if d.Detected.ExtensionMismatch {
		m.deps.Logger.Warn("extension mismatch", "path", path.String(), "mime", d.Detected.MIME)
	}

	parts := m.runExtractors(ctx, d.File, d.Detected)
	meta := m.deps.Consolidator.Consolidate(d.Detected, parts)

	d.Date = m.deps.Dates.Resolve(meta, filepath.Base(path.String()))
	if d.Date.NeedsReview {
		m.deps.Logger.Warn("no date source available, flagged for review", "path", path.String())
	}

	d.Classification = m.deps.Classifier.Classify(d.Detected, meta)
	if d.Detected.ExtensionMismatch {
		d.Classification.Rationale += "; extension mismatch (advisory)"
	}

	vp, err := m.deps.Paths.Build(d.Classification, d.Date)
	if err != nil {
		m.failFile(d, NewStageError(StagePath, path.String(), err))
		return d, nil
	}
	d.Path = vp

	return d, nil
}

// Materialize finalizes a decision: it ensures the target directory
// hierarchy exists, registers the checksum, and appends the decision to
// the audit log. It is idempotent (already-existing directories are success) and
// safe under concurrent invocation.
//
// In preview mode nothing is mutated and the decision stays pending.
// Per-file folder-creation failures are recorded on the decision, not
// returned; the returned error is reserved for store-level failures.
func (m *Manager) Materialize(ctx context.Context, d *OrganizationDecision) (CreationResult, error) {
	if m.preview {
		m.deps.Logger.Debug("preview: skipping materialization", "path", d.File.SourcePath)
		return CreationResult{Path: d.Path.Absolute}, nil
	}
	if d.Status != DecisionPending {
		// Re-materializing a finalized decision is a no-op.
		return CreationResult{Path: d.Path.Absolute}, nil
	}

	// Failures captured during Decide finalize here so the audit log keeps
	// one record per attempt.
	if d.Error != "" {
		d.Status = DecisionFailed
		return CreationResult{}, m.save(ctx, d)
	}

	if d.Duplicate {
		return CreationResult{}, m.finishDuplicate(ctx, d)
	}

	// The directory must exist before the checksum is committed: a failed
	// registration after a folder-creation failure would leave the content
	// registered but never organized, and a retry of the same file would
	// resolve as a duplicate of itself.
	result, err := m.deps.Materializer.EnsureDirectory(ctx, d.Path.Absolute)
	if err != nil {
		m.failFile(d, NewStageError(StageMaterialize, d.File.SourcePath, err))
		d.Status = DecisionFailed
		return CreationResult{}, m.save(ctx, d)
	}

	err = m.deps.Index.Register(ctx, ChecksumEntry{
		Checksum:  d.File.Checksum,
		Path:      d.File.SourcePath,
		Size:      d.File.Size,
		FirstSeen: m.deps.Clock.Now(),
	})
	if errors.Is(err, ErrAlreadyExists) {
		// Lost a race against a worker holding identical content. Exactly
		// one registrant wins; everyone else resolves to duplicate. Both
		// racers ensured the same directory, which is idempotent.
		d.Duplicate = true
		d.File.Status = StatusDuplicate
		if existing, lerr := m.deps.Index.Lookup(ctx, d.File.Checksum); lerr == nil && existing != nil {
			d.DuplicateOf = existing.Path
		}
		return CreationResult{}, m.finishDuplicate(ctx, d)
	}
	if err != nil {
		return CreationResult{}, fmt.Errorf("%w: register %s: %v", ErrStoreUnavailable, d.File.Checksum, err)
	}

	d.File.Status = StatusOrganized
	d.Status = DecisionSuccess
	m.deps.Logger.Info("file organized",
		"path", d.File.SourcePath,
		"target", d.Path.Absolute,
		"category", d.Classification.Category,
		"date_source", d.Date.Source)
	return result, m.save(ctx, d)
}

// OrganizeBatch runs Decide then Materialize for each file on a bounded
// worker pool. One file's failure never aborts the batch; a checksum store
// failure or context cancellation stops dispatching new files while
// in-flight files complete (already-created directories are left intact).
// The returned slice holds one decision per processed file in input order.
func (m *Manager) OrganizeBatch(ctx context.Context, paths []*Path) ([]*OrganizationDecision, error) {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make([]*OrganizationDecision, len(paths))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		batchErr error
	)
	abort := func(err error) {
		errOnce.Do(func() {
			batchErr = err
			cancel()
		})
	}

	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				d, err := m.organizeOne(batchCtx, paths[i])
				if err != nil {
					abort(err)
					return
				}
				results[i] = d
			}
		}()
	}

	// Dispatch files one at a time; cancellation is checked between files,
	// never mid-file.
dispatch:
	for i := range paths {
		select {
		case <-batchCtx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	decisions := make([]*OrganizationDecision, 0, len(paths))
	for _, d := range results {
		if d != nil {
			decisions = append(decisions, d)
		}
	}

	if batchErr != nil {
		return decisions, batchErr
	}
	if err := ctx.Err(); err != nil {
		return decisions, err
	}
	return decisions, nil
}

// organizeOne processes a single file end to end.
func (m *Manager) organizeOne(ctx context.Context, path *Path) (*OrganizationDecision, error) {
	d, err := m.Decide(ctx, path)
	if err != nil {
		return nil, err
	}
	if _, err := m.Materialize(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// finishDuplicate records the sighting and finalizes the decision.
// Duplicates are a normal outcome: the decision succeeds with nothing to
// materialize.
func (m *Manager) finishDuplicate(ctx context.Context, d *OrganizationDecision) error {
	err := m.deps.Index.RecordDuplicate(ctx, d.File.Checksum, d.File.SourcePath, d.File.Size)
	if err != nil {
		return fmt.Errorf("%w: record duplicate %s: %v", ErrStoreUnavailable, d.File.Checksum, err)
	}
	d.Status = DecisionSuccess
	m.deps.Logger.Info("duplicate skipped", "path", d.File.SourcePath, "first_seen", d.DuplicateOf)
	return m.save(ctx, d)
}

// save appends the decision to the audit log.
func (m *Manager) save(ctx context.Context, d *OrganizationDecision) error {
	if err := m.deps.Index.SaveDecision(ctx, d); err != nil {
		return fmt.Errorf("%w: save decision %s: %v", ErrStoreUnavailable, d.ID, err)
	}
	return nil
}

// failFile marks a per-file failure on the decision record.
func (m *Manager) failFile(d *OrganizationDecision, err *StageError) {
	d.File.Status = StatusFailed
	d.Error = err.Error()
	m.deps.Logger.Error("file failed", "stage", err.Stage, "path", err.Path, "error", err.Err)
}

// runExtractors invokes the always-on extractors plus the group selected
// by type detection. Extractor failure is non-fatal: the fields it would
// have produced are simply absent.
func (m *Manager) runExtractors(ctx context.Context, file FileRecord, detected DetectedType) []PartialMetadata {
	var selected []Extractor
	selected = append(selected, m.deps.Extractors[""]...)
	if detected.ExtractorGroup != "" {
		selected = append(selected, m.deps.Extractors[detected.ExtractorGroup]...)
	}

	parts := make([]PartialMetadata, 0, len(selected))
	for _, ex := range selected {
		part, err := ex.Extract(ctx, file, detected)
		if err != nil {
			m.deps.Logger.Warn("extractor failed", "source", ex.Source(), "path", file.SourcePath, "error", err)
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// checksumAndPrefix reads the file once, capturing the bounded detection
// prefix and streaming the rest through the hash. Memory use is bounded by
// the detector's prefix size regardless of file size.
func (m *Manager) checksumAndPrefix(path *Path) (string, []byte, error) {
	f, err := m.deps.Filesystem.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	prefix := make([]byte, m.deps.Detector.PrefixSize())
	n, err := io.ReadFull(f, prefix)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, fmt.Errorf("reading prefix: %w", err)
	}
	prefix = prefix[:n]

	h := sha256.New()
	h.Write(prefix)
	if _, err := io.Copy(h, f); err != nil {
		return "", nil, fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), prefix, nil
}

// BatchSummary tallies decision outcomes for reporting.
type BatchSummary struct {
	Organized  int
	Duplicates int
	Failed     int
	Pending    int // Preview-mode decisions
}

// Summarize counts outcomes across a batch's decisions.
func Summarize(decisions []*OrganizationDecision) BatchSummary {
	var s BatchSummary
	for _, d := range decisions {
		switch {
		case d.Duplicate:
			s.Duplicates++
		// Preview keeps failed files pending, so go by the recorded error.
		case d.Error != "":
			s.Failed++
		case d.Status == DecisionPending:
			s.Pending++
		default:
			s.Organized++
		}
	}
	return s
}
