package metadata

import (
	"testing"
	"time"

	"vaultorg/internal/organize"
)

func TestConsolidate_PreservesProvenance(t *testing.T) {
	t.Parallel()

	exifTime := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	parts := []organize.PartialMetadata{
		{
			Source:     "exif",
			Confidence: 0.95,
			Fields: map[string][]organize.FieldValue{
				organize.FieldCaptureTime: {{String: "2024-01-15T14:30:22Z", Time: exifTime, HasTime: true}},
				organize.FieldCameraMake:  {{String: "Canon"}},
			},
		},
		{
			Source:     "filesystem",
			Confidence: 1.0,
			Fields: map[string][]organize.FieldValue{
				organize.FieldModifiedTime: {{String: "2024-02-01T09:00:00Z", Time: exifTime.AddDate(0, 0, 17), HasTime: true}},
			},
		},
	}

	c := NewConsolidator()
	merged := c.Consolidate(organize.DetectedType{MIME: "image/jpeg"}, parts)

	capture := merged.Lookup(organize.FieldCaptureTime)
	if len(capture) != 1 {
		t.Fatalf("capture candidates = %d, want 1", len(capture))
	}
	if capture[0].Source != "exif" {
		t.Errorf("Source = %q, want exif", capture[0].Source)
	}
	if capture[0].Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", capture[0].Confidence)
	}
	if !capture[0].Time.Equal(exifTime) {
		t.Errorf("Time = %v, want %v", capture[0].Time, exifTime)
	}

	if !merged.Has(organize.FieldCameraMake) {
		t.Error("camera make field lost in consolidation")
	}
	if !merged.Has(organize.FieldModifiedTime) {
		t.Error("modification time field lost in consolidation")
	}
}

func TestConsolidate_ConflictsAreKeptNotCollapsed(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	parts := []organize.PartialMetadata{
		{
			Source: "exif",
			Fields: map[string][]organize.FieldValue{
				organize.FieldCaptureTime: {{Time: t1, HasTime: true}},
			},
		},
		{
			Source: "media",
			Fields: map[string][]organize.FieldValue{
				organize.FieldCaptureTime: {{Time: t2, HasTime: true}},
			},
		},
	}

	merged := NewConsolidator().Consolidate(organize.DetectedType{}, parts)

	candidates := merged.Lookup(organize.FieldCaptureTime)
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want both conflicting values kept", len(candidates))
	}
	// Append order preserves part order.
	if candidates[0].Source != "exif" || candidates[1].Source != "media" {
		t.Errorf("candidate order = [%s, %s], want [exif, media]", candidates[0].Source, candidates[1].Source)
	}
}

func TestConsolidate_AbsentFieldsStayAbsent(t *testing.T) {
	t.Parallel()

	merged := NewConsolidator().Consolidate(organize.DetectedType{}, nil)
	if merged.Has(organize.FieldCaptureTime) {
		t.Error("empty consolidation reports a capture time")
	}
	if got := merged.Lookup(organize.FieldCaptureTime); got != nil {
		t.Errorf("Lookup on absent field = %v, want nil", got)
	}
}
