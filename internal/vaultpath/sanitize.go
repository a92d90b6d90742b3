package vaultpath

import "strings"

// maxSegmentLen bounds a single sanitized path component. Long segments
// are collapsed to this many runes; the assembled-path length check in the
// builder is what guards against collisions, so per-segment collapsing is
// safe.
const maxSegmentLen = 80

// illegalChars are characters rejected by at least one supported
// filesystem (Windows is the strictest).
const illegalChars = `<>:"/\|?*`

// reservedNames are device names Windows refuses as path components,
// regardless of case or extension.
var reservedNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizeSegment makes one path component safe on every supported
// filesystem: illegal and control characters become underscores, trailing
// dots and spaces are trimmed, reserved device names get a marker suffix,
// and over-long segments are collapsed to a bounded rune count. An empty
// result becomes "_".
func SanitizeSegment(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		if r < 0x20 || strings.ContainsRune(illegalChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	s := strings.TrimRight(b.String(), ". ")
	if s == "" {
		return "_"
	}

	if isReserved(s) {
		s += "_"
	}

	if runes := []rune(s); len(runes) > maxSegmentLen {
		s = string(runes[:maxSegmentLen])
	}
	return s
}

// isReserved checks the base name (everything before the first dot)
// against the reserved device names, case-insensitively. "CON" and
// "con.txt" are both reserved on Windows.
func isReserved(segment string) bool {
	base := segment
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	_, ok := reservedNames[strings.ToLower(base)]
	return ok
}
