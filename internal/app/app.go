// Package app is the application layer between the CLI and the organize
// manager. It constructs all collaborators from config, exposes
// high-level operations that accept raw string paths, and manages the
// index and log file lifecycle on Close.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"vaultorg/internal/classify"
	"vaultorg/internal/config"
	"vaultorg/internal/dates"
	"vaultorg/internal/detect"
	"vaultorg/internal/fsops"
	"vaultorg/internal/index"
	"vaultorg/internal/metadata"
	"vaultorg/internal/organize"
	"vaultorg/internal/vault"
	"vaultorg/internal/vaultpath"
)

// App wires the pipeline together for one CLI invocation.
type App struct {
	cfg     *config.Config
	index   organize.ChecksumIndex
	fsmgr   organize.FilesystemManager
	manager *organize.Manager
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Organize", "Stats") and is
// stamped on every log line. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	fsmgr := fsops.NewOSFilesystemManager(cfg.Scan.Ignore)

	idx, err := index.NewIndexFromConfig(cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("creating checksum index: %w", err)
	}

	rules, err := classifyRules(cfg.Rules)
	if err != nil {
		idx.Close()
		return nil, err
	}
	engine, err := classify.NewEngine(rules)
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("compiling classification rules: %w", err)
	}

	// Preview runs must not touch the vault tree, not even to create the
	// root. Materialize never calls EnsureDirectory in preview mode, but
	// the filesystem backend creates its root at construction.
	var mat organize.Materializer
	if cfg.Preview {
		mat = vault.NewMemoryMaterializer()
	} else {
		mat, err = vault.NewMaterializerFromConfig(cfg.VaultRoot)
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("creating materializer: %w", err)
		}
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, operation, runID)
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	deps := organize.Deps{
		Index:        idx,
		Detector:     detect.NewRouter(cfg.Extensions),
		Extractors:   map[string][]organize.Extractor{"": {fsops.NewStatExtractor()}},
		Consolidator: metadata.NewConsolidator(),
		Dates:        dates.NewResolver(organize.RealClock{}, cfg.Dates.SourceOrder),
		Classifier:   engine,
		Paths: vaultpath.NewBuilder(cfg.VaultRoot, cfg.MaxPathLength, vaultpath.Structure{
			Subcategories: cfg.Folders.Subcategories,
			DateDepth:     cfg.Folders.DateDepth,
		}),
		Materializer: mat,
		Filesystem:   fsmgr,
		Logger:       &slogAdapter{l: logger},
		Clock:        organize.RealClock{},
		IDGen:        organize.UUIDGenerator{},
	}

	mgr := organize.NewManager(deps, organize.Options{
		Workers: cfg.Workers,
		Preview: cfg.Preview,
	})

	return &App{
		cfg:     cfg,
		index:   idx,
		fsmgr:   fsmgr,
		manager: mgr,
		logFile: logFile,
	}, nil
}

// classifyRules converts config rule records into engine rules.
func classifyRules(configs []config.RuleConfig) ([]classify.Rule, error) {
	rules := make([]classify.Rule, 0, len(configs))
	for _, rc := range configs {
		conditions := make([]classify.Condition, 0, len(rc.Conditions))
		for _, cc := range rc.Conditions {
			conditions = append(conditions, classify.Condition{
				Field: cc.Field,
				Op:    classify.ConditionOp(cc.Op),
				Value: cc.Value,
			})
		}
		rules = append(rules, classify.Rule{
			Name:         rc.Name,
			Priority:     rc.Priority,
			Category:     organize.Category(rc.Category),
			Subcategory:  rc.Subcategory,
			MIMEPatterns: rc.MIMEPatterns,
			ExtPatterns:  rc.ExtPatterns,
			Conditions:   conditions,
		})
	}
	return rules, nil
}

// Organize resolves the given path and runs the pipeline over it. A
// directory is expanded through discovery (honoring ignore rules); a
// single file is processed alone. Returns one decision per processed
// file.
func (a *App) Organize(ctx context.Context, rawPath string, recursive bool) ([]*organize.OrganizationDecision, error) {
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	var paths []*organize.Path
	if p.IsDir() {
		paths, err = a.fsmgr.FindFiles(p, recursive)
		if err != nil {
			return nil, fmt.Errorf("discovering files: %w", err)
		}
	} else {
		paths = []*organize.Path{p}
	}

	return a.manager.OrganizeBatch(ctx, paths)
}

// Preview reports whether this run computes decisions without mutating
// anything.
func (a *App) Preview() bool { return a.manager.Preview() }

// Stats returns index counters: unique files, deduplicated bytes, and
// decision tallies.
func (a *App) Stats(ctx context.Context) (organize.IndexStats, error) {
	return a.index.Stats(ctx)
}

// Close releases the index and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.index.Close(); err != nil {
		firstErr = fmt.Errorf("closing index: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
