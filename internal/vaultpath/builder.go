// Package vaultpath constructs sanitized, length-bounded target paths in
// the vault tree from a classification and a resolved date.
package vaultpath

import (
	"fmt"
	"path/filepath"

	"vaultorg/internal/organize"
)

// DefaultMaxPathLength keeps assembled paths under the common 255/260
// byte platform limits with headroom for the final filename.
const DefaultMaxPathLength = 240

// Structure configures the folder layout under the vault root.
type Structure struct {
	// Subcategories nests a subcategory folder under the category when the
	// classification carries one.
	Subcategories bool

	// DateDepth controls date nesting: 1 = year, 2 = year/year-month,
	// 3 = year/year-month/year-month-day.
	DateDepth int
}

// Builder assembles vault paths. Paths take the form
// root/category/[subcategory]/year/year-month/year-month-day.
type Builder struct {
	root      string
	maxLength int
	structure Structure
}

// NewBuilder creates a Builder rooted at the vault root. maxLength bounds
// the assembled path in bytes; zero selects DefaultMaxPathLength.
func NewBuilder(root string, maxLength int, structure Structure) *Builder {
	if maxLength <= 0 {
		maxLength = DefaultMaxPathLength
	}
	if structure.DateDepth < 1 || structure.DateDepth > 3 {
		structure.DateDepth = 3
	}
	return &Builder{root: root, maxLength: maxLength, structure: structure}
}

// Build assembles and sanitizes the target path. When the assembled path
// would exceed the configured maximum it returns ErrPathTooLong rather
// than truncating: truncation risks collisions between distinct dates or
// categories.
func (b *Builder) Build(c organize.Classification, d organize.DateInfo) (organize.VaultPath, error) {
	vp := organize.VaultPath{
		Category:     SanitizeSegment(string(c.Category)),
		Year:         fmt.Sprintf("%04d", d.Local.Year),
		YearMonth:    fmt.Sprintf("%04d-%02d", d.Local.Year, int(d.Local.Month)),
		YearMonthDay: d.Local.String(),
	}

	segments := []string{vp.Category}
	if b.structure.Subcategories && c.Subcategory != "" {
		vp.Subcategory = SanitizeSegment(c.Subcategory)
		segments = append(segments, vp.Subcategory)
	}
	segments = append(segments, vp.Year)
	if b.structure.DateDepth >= 2 {
		segments = append(segments, vp.YearMonth)
	}
	if b.structure.DateDepth >= 3 {
		segments = append(segments, vp.YearMonthDay)
	}

	vp.Absolute = filepath.Join(append([]string{b.root}, segments...)...)
	if len(vp.Absolute) > b.maxLength {
		return organize.VaultPath{}, fmt.Errorf("%w: %d bytes (limit %d): %s",
			organize.ErrPathTooLong, len(vp.Absolute), b.maxLength, vp.Absolute)
	}
	return vp, nil
}

var _ organize.PathBuilder = (*Builder)(nil)
