package testutil

import (
	"context"

	"vaultorg/internal/organize"
)

// StaticExtractor returns canned metadata for every file. When Err is
// set, extraction fails instead.
type StaticExtractor struct {
	Tag  string
	Meta organize.PartialMetadata
	Err  error
}

func (e *StaticExtractor) Source() string { return e.Tag }

func (e *StaticExtractor) Extract(ctx context.Context, file organize.FileRecord, detected organize.DetectedType) (organize.PartialMetadata, error) {
	if e.Err != nil {
		return organize.PartialMetadata{}, e.Err
	}
	return e.Meta, nil
}

var _ organize.Extractor = (*StaticExtractor)(nil)
