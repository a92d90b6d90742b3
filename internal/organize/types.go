package organize

import (
	"fmt"
	"time"
)

// FileStatus tracks a file through the organization pipeline.
type FileStatus string

const (
	StatusPending   FileStatus = "pending"
	StatusDuplicate FileStatus = "duplicate"
	StatusOrganized FileStatus = "organized"
	StatusFailed    FileStatus = "failed"
)

// FileRecord represents one physical file under consideration.
// Checksum is computed once per unique content and never changes after
// it is set.
type FileRecord struct {
	SourcePath   string    // Absolute path on host
	Size         int64     // Size in bytes
	Checksum     string    // SHA-256 hex digest of the content
	DiscoveredAt time.Time // When the file entered the pipeline
	Status       FileStatus
}

// DetectionMethod describes how a file's content type was determined.
type DetectionMethod string

const (
	MethodContentSignature  DetectionMethod = "content-signature"
	MethodExtensionFallback DetectionMethod = "extension-fallback"
	MethodHeaderInspection  DetectionMethod = "header-inspection"
	MethodUnknown           DetectionMethod = "unknown"
)

// DetectedType is the result of content inspection for one file.
// It is recomputed per file and never persisted beyond the decision record.
type DetectedType struct {
	MIME              string
	Extension         string // Normalized actual extension, no dot, lowercase
	Method            DetectionMethod
	ExtensionMismatch bool   // Extension disagrees with detected content
	ExtractorGroup    string // Which extractor family should run (e.g. "image")
}

// Well-known metadata field names. Extractors may emit additional fields;
// these are the ones the pipeline itself consumes.
const (
	FieldCaptureTime   = "capture_time"   // Embedded original capture timestamp
	FieldDigitizedTime = "digitized_time" // Embedded digitized/created timestamp
	FieldCreatedTime   = "fs_created"     // Filesystem birth time
	FieldModifiedTime  = "fs_modified"    // Filesystem modification time
	FieldCameraMake    = "camera_make"
	FieldCameraModel   = "camera_model"
	FieldPageCount     = "page_count"
	FieldDuration      = "duration"
	FieldTrackCount    = "track_count"
	FieldAuthor        = "author"
	FieldTitle         = "title"
)

// FieldValue is one raw value an extractor reported for a field.
// Timestamp fields set Time/HasTime; TZOffset carries the embedded UTC
// offset in seconds east when the source recorded one.
type FieldValue struct {
	String   string
	Time     time.Time
	HasTime  bool
	TZOffset *int
}

// PartialMetadata is the output of a single extractor run. It may cover
// any subset of fields; a failed or silent extractor simply contributes
// nothing.
type PartialMetadata struct {
	Source     string // Extractor tag, e.g. "exif", "filesystem"
	Confidence float64
	Fields     map[string][]FieldValue
}

// Candidate is a field value with full provenance, as held by
// ConsolidatedMetadata. Conflicting candidates from different sources are
// all retained; DateResolver and ClassificationEngine pick winners.
type Candidate struct {
	FieldValue
	Source     string
	Confidence float64
}

// ConsolidatedMetadata is the normalized, provenance-preserving merge of
// all extractor outputs for one file.
type ConsolidatedMetadata struct {
	Fields map[string][]Candidate
}

// Lookup returns all candidates for a field, or nil.
func (m ConsolidatedMetadata) Lookup(field string) []Candidate {
	if m.Fields == nil {
		return nil
	}
	return m.Fields[field]
}

// Has reports whether at least one candidate exists for a field.
func (m ConsolidatedMetadata) Has(field string) bool {
	return len(m.Lookup(field)) > 0
}

// DateSource identifies which fallback step produced a DateInfo.
type DateSource string

const (
	SourceEXIFOriginal  DateSource = "exif_datetime_original"
	SourceEXIFDigitized DateSource = "exif_datetime_digitized"
	SourceFileCreated   DateSource = "file_creation_time"
	SourceFilenameDate  DateSource = "filename_pattern"
	SourceFileModified  DateSource = "file_modification_time"
	SourceFallbackNow   DateSource = "fallback_now"
)

// LocalDate is a calendar date in the timezone that applied at capture
// time. It carries no clock time and no location.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// String formats the date as YYYY-MM-DD.
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// LocalDateOf extracts the calendar date from an instant in its location.
func LocalDateOf(t time.Time) LocalDate {
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// DateInfo is the single authoritative date decision for a file: the
// instant normalized to UTC, the local calendar date used for folder
// naming, the fallback source used, and its confidence.
type DateInfo struct {
	UTC         time.Time
	Local       LocalDate
	Source      DateSource
	Confidence  float64
	NeedsReview bool // Set when only the fallback-now source was available
	OffsetKnown bool // A capture-time UTC offset was embedded in metadata
}

// Category is the closed set of primary classification categories.
type Category string

const (
	CategoryPhotos    Category = "photos"
	CategoryDocuments Category = "documents"
	CategoryVideos    Category = "videos"
	CategoryAudio     Category = "audio"
	CategoryArchives  Category = "archives"
	CategoryOther     Category = "other"
)

// Subcategories valid within each primary category. A rule naming a
// combination outside this table is rejected when the rule set is
// compiled, so classification results never land outside it.
var AllowedSubcategories = map[Category][]string{
	CategoryPhotos:    {"raw", "camera", "screenshots", "edited"},
	CategoryDocuments: {"pdf", "text", "spreadsheets", "presentations", "ebooks"},
	CategoryVideos:    {"personal", "screen-recordings"},
	CategoryAudio:     {"music", "voice", "podcasts"},
	CategoryArchives:  {"compressed", "disk-images"},
	CategoryOther:     nil,
}

// SubcategoryAllowed reports whether sub is valid under cat. The empty
// subcategory is always valid.
func SubcategoryAllowed(cat Category, sub string) bool {
	if sub == "" {
		return true
	}
	for _, s := range AllowedSubcategories[cat] {
		if s == sub {
			return true
		}
	}
	return false
}

// ClassificationMethod describes which path produced a classification.
type ClassificationMethod string

const (
	ClassifiedByRule     ClassificationMethod = "rule-match"
	ClassifiedByFallback ClassificationMethod = "mime-fallback"
	Unclassified         ClassificationMethod = "unclassified"
)

// Classification is the category decision for one file.
type Classification struct {
	Category    Category
	Subcategory string
	Confidence  float64
	Method      ClassificationMethod
	Rationale   string // Names the rule or fallback path used
}

// VaultPath is a fully resolved target location in the vault tree.
type VaultPath struct {
	Category     string // Sanitized category segment
	Subcategory  string // Sanitized subcategory segment, may be empty
	Year         string // "2024"
	YearMonth    string // "2024-01"
	YearMonthDay string // "2024-01-15"
	Absolute     string // Assembled absolute directory path
}

// DecisionStatus is the execution state of an OrganizationDecision.
type DecisionStatus string

const (
	DecisionPending DecisionStatus = "pending"
	DecisionSuccess DecisionStatus = "success"
	DecisionFailed  DecisionStatus = "failed"
)

// OrganizationDecision is the audited outcome for one file in one
// organization attempt. Records are immutable once saved; re-processing a
// file creates a new record rather than editing history.
type OrganizationDecision struct {
	ID             string
	File           FileRecord
	Detected       DetectedType
	Date           DateInfo
	Classification Classification
	Path           VaultPath
	Duplicate      bool   // Content was already registered
	DuplicateOf    string // First-seen path when Duplicate is set
	Status         DecisionStatus
	Error          string // Failure detail, attributed to a pipeline stage
	DecidedAt      time.Time
}

// CreationResult reports the outcome of materializing a decision's
// directory hierarchy.
type CreationResult struct {
	Path    string
	Created bool // False when the directory already existed or preview mode is on
}
