// Package metadata merges per-type extractor outputs into one normalized,
// provenance-preserving record. The consolidator never picks winners:
// conflicting candidates are all retained, and collapse happens at the
// point of use (date resolution, classification), which knows the
// field-specific priority. This keeps the consolidator extractor-agnostic,
// so new extractors can be added without touching collapse logic.
package metadata

import "vaultorg/internal/organize"

// Consolidator merges PartialMetadata records.
type Consolidator struct{}

// NewConsolidator creates a Consolidator.
func NewConsolidator() *Consolidator { return &Consolidator{} }

// Consolidate merges extractor outputs field by field. Each candidate
// keeps its source tag and source confidence. Absent fields stay absent:
// nothing is defaulted, so an extractor failure is observable downstream.
func (c *Consolidator) Consolidate(_ organize.DetectedType, parts []organize.PartialMetadata) organize.ConsolidatedMetadata {
	merged := organize.ConsolidatedMetadata{Fields: make(map[string][]organize.Candidate)}

	for _, part := range parts {
		for field, values := range part.Fields {
			for _, v := range values {
				merged.Fields[field] = append(merged.Fields[field], organize.Candidate{
					FieldValue: v,
					Source:     part.Source,
					Confidence: part.Confidence,
				})
			}
		}
	}

	return merged
}

var _ organize.Consolidator = (*Consolidator)(nil)
