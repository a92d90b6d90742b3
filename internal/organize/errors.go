package organize

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline's failure taxonomy. Per-file errors are
// captured on that file's decision and never abort a batch; store-level
// errors abort the whole batch because dedup correctness cannot be
// guaranteed without the registry.
var (
	// ErrAlreadyExists is returned by ChecksumIndex.Register when the
	// checksum is already registered. It signals a duplicate, which is a
	// normal outcome, not a failure.
	ErrAlreadyExists = errors.New("checksum already registered")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPathTooLong is returned when the assembled vault path exceeds the
	// configured maximum. The builder reports rather than truncates, since
	// truncation risks collisions between distinct dates or categories.
	ErrPathTooLong = errors.New("assembled path exceeds maximum length")

	// ErrStoreUnavailable wraps checksum registry failures. It is fatal
	// for the whole batch.
	ErrStoreUnavailable = errors.New("checksum store unavailable")
)

// Pipeline stage names used in error attribution.
const (
	StageChecksum    = "checksum"
	StageDedup       = "dedup"
	StageDetect      = "detect"
	StageExtract     = "extract"
	StageConsolidate = "consolidate"
	StageDate        = "date"
	StageClassify    = "classify"
	StagePath        = "path"
	StageMaterialize = "materialize"
)

// StageError attributes a per-file failure to a pipeline stage so the
// decision record carries enough context to replay the file manually.
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with the stage and file it occurred in.
func NewStageError(stage, path string, err error) *StageError {
	return &StageError{Stage: stage, Path: path, Err: err}
}
