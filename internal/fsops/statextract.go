package fsops

import (
	"context"
	"fmt"
	"os"

	"vaultorg/internal/organize"
)

// StatExtractor emits filesystem timestamps as metadata fields. It always
// contributes the modification time; the creation (birth) time is emitted
// only on platforms and filesystems that actually record one, so a
// missing birth time never masquerades as a real creation date.
type StatExtractor struct{}

func NewStatExtractor() *StatExtractor {
	return &StatExtractor{}
}

// Source returns the provenance tag for filesystem timestamps.
func (e *StatExtractor) Source() string { return "filesystem" }

// Extract stats the file and reports its timestamps.
func (e *StatExtractor) Extract(ctx context.Context, file organize.FileRecord, detected organize.DetectedType) (organize.PartialMetadata, error) {
	if err := ctx.Err(); err != nil {
		return organize.PartialMetadata{}, err
	}

	info, err := os.Stat(file.SourcePath)
	if err != nil {
		return organize.PartialMetadata{}, fmt.Errorf("stat %s: %w", file.SourcePath, err)
	}

	fields := map[string][]organize.FieldValue{
		organize.FieldModifiedTime: {{
			String:  info.ModTime().UTC().Format("2006-01-02T15:04:05Z07:00"),
			Time:    info.ModTime(),
			HasTime: true,
		}},
	}

	if birth, ok := birthTime(info); ok {
		fields[organize.FieldCreatedTime] = []organize.FieldValue{{
			String:  birth.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Time:    birth,
			HasTime: true,
		}}
	}

	return organize.PartialMetadata{
		Source:     e.Source(),
		Confidence: 1.0,
		Fields:     fields,
	}, nil
}

var _ organize.Extractor = (*StatExtractor)(nil)
