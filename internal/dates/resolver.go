// Package dates resolves the single authoritative creation date for a
// file from an ordered fallback chain of metadata candidates, the
// filename, and finally the processing clock.
package dates

import (
	"regexp"
	"strconv"
	"time"

	"vaultorg/internal/organize"
)

// Per-source confidences, fixed by the fallback chain design.
const (
	confCapture   = 0.95
	confDigitized = 0.85
	confCreated   = 0.8
	confFilename  = 0.7
	confModified  = 0.6
	confFallback  = 0.0
)

// filenameDate matches an eight-digit date in a filename: four-digit year,
// two-digit month, two-digit day, in that order, separated by any single
// non-digit or nothing at all (20240115, 2024-01-15, 2024_01_15).
var filenameDate = regexp.MustCompile(`(\d{4})\D?(\d{2})\D?(\d{2})`)

// Resolver picks one DateInfo per file. It is the single source of
// folder-date truth: it never produces more than one result.
type Resolver struct {
	clock      organize.Clock
	sourceRank map[string]int
}

// NewResolver creates a Resolver. sourceOrder lists extractor source tags
// in priority order and breaks ties when two extractors report the same
// field; within one source, the earliest-reported candidate wins.
func NewResolver(clock organize.Clock, sourceOrder []string) *Resolver {
	rank := make(map[string]int, len(sourceOrder))
	for i, s := range sourceOrder {
		rank[s] = i
	}
	return &Resolver{clock: clock, sourceRank: rank}
}

// Resolve walks the fallback chain and stops at the first present
// candidate. When a capture-time UTC offset is known, the local calendar
// date is computed in that offset, never in the processing machine's
// timezone; when unknown, the local date is the UTC calendar date of the
// chosen instant.
func (r *Resolver) Resolve(meta organize.ConsolidatedMetadata, filename string) organize.DateInfo {
	if c, ok := r.pick(meta, organize.FieldCaptureTime); ok {
		return fromCandidate(c, organize.SourceEXIFOriginal, confCapture)
	}
	if c, ok := r.pick(meta, organize.FieldDigitizedTime); ok {
		return fromCandidate(c, organize.SourceEXIFDigitized, confDigitized)
	}
	if c, ok := r.pick(meta, organize.FieldCreatedTime); ok {
		return fromCandidate(c, organize.SourceFileCreated, confCreated)
	}
	if d, ok := parseFilenameDate(filename); ok {
		return organize.DateInfo{
			UTC:        time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC),
			Local:      d,
			Source:     organize.SourceFilenameDate,
			Confidence: confFilename,
		}
	}
	if c, ok := r.pick(meta, organize.FieldModifiedTime); ok {
		return fromCandidate(c, organize.SourceFileModified, confModified)
	}

	now := r.clock.Now().UTC()
	return organize.DateInfo{
		UTC:         now,
		Local:       organize.LocalDateOf(now),
		Source:      organize.SourceFallbackNow,
		Confidence:  confFallback,
		NeedsReview: true,
	}
}

// pick selects the winning timestamp candidate for a field: best source
// rank first, then earliest-reported. Candidates without a parsed time are
// skipped.
func (r *Resolver) pick(meta organize.ConsolidatedMetadata, field string) (organize.Candidate, bool) {
	var (
		best  organize.Candidate
		found bool
	)
	for _, c := range meta.Lookup(field) {
		if !c.HasTime {
			continue
		}
		if !found || r.rank(c.Source) < r.rank(best.Source) {
			best = c
			found = true
		}
	}
	return best, found
}

func (r *Resolver) rank(source string) int {
	if i, ok := r.sourceRank[source]; ok {
		return i
	}
	// Unranked sources sort after every configured one.
	return len(r.sourceRank)
}

// fromCandidate normalizes the instant to UTC and computes the local
// calendar date in the embedded offset when one is known.
func fromCandidate(c organize.Candidate, source organize.DateSource, confidence float64) organize.DateInfo {
	utc := c.Time.UTC()
	local := organize.LocalDateOf(utc)
	offsetKnown := c.TZOffset != nil
	if offsetKnown {
		local = organize.LocalDateOf(utc.In(time.FixedZone("capture", *c.TZOffset)))
	}
	return organize.DateInfo{
		UTC:         utc,
		Local:       local,
		Source:      source,
		Confidence:  confidence,
		OffsetKnown: offsetKnown,
	}
}

// parseFilenameDate scans the filename for the first plausible embedded
// date. Candidates that fail calendar validation (month 13, February 30)
// are rejected and scanning continues.
func parseFilenameDate(filename string) (organize.LocalDate, bool) {
	for _, m := range filenameDate.FindAllStringSubmatch(filename, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if year < 1900 || year > 2100 {
			continue
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
			continue
		}
		return organize.LocalDate{Year: year, Month: time.Month(month), Day: day}, true
	}
	return organize.LocalDate{}, false
}

var _ organize.DateResolver = (*Resolver)(nil)
