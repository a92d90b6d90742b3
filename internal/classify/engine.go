// Package classify assigns a primary category and optional subcategory by
// evaluating ordered, pattern-matched rules over the detected MIME type,
// the file extension, and metadata conditions. Rules are configuration
// data compiled once into matchers at load time.
package classify

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"vaultorg/internal/organize"
)

// Confidence levels fixed by the classification design.
const (
	confRuleMatch = 0.95
	confFallback  = 0.5
	confNone      = 0.0
)

// ConditionOp is the comparison a metadata condition applies.
type ConditionOp string

const (
	OpExists   ConditionOp = "exists"
	OpEquals   ConditionOp = "equals"
	OpContains ConditionOp = "contains"
)

// Condition is a predicate over consolidated metadata. All of a rule's
// conditions must hold for the rule to match.
type Condition struct {
	Field string
	Op    ConditionOp
	Value string
}

// Rule is one classification rule. At least one of MIMEPatterns or
// ExtPatterns must be non-empty. Patterns use path.Match syntax
// ("image/*", "cr?").
type Rule struct {
	Name         string
	Priority     int
	Category     organize.Category
	Subcategory  string
	MIMEPatterns []string
	ExtPatterns  []string
	Conditions   []Condition
}

// compiledRule carries normalized patterns and the rule's declaration
// index for stable tie-breaking.
type compiledRule struct {
	Rule
	order int
}

// Engine evaluates rules in descending priority; the first match wins and
// equal priorities keep declaration order.
type Engine struct {
	rules []compiledRule
}

// NewEngine validates and compiles the rule set. A rule with both pattern
// lists empty, an unknown category, or a subcategory outside its
// category's allowed set is rejected.
func NewEngine(rules []Rule) (*Engine, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if len(r.MIMEPatterns) == 0 && len(r.ExtPatterns) == 0 {
			return nil, fmt.Errorf("rule %q: at least one pattern list must be non-empty", r.Name)
		}
		if _, ok := organize.AllowedSubcategories[r.Category]; !ok {
			return nil, fmt.Errorf("rule %q: unknown category %q", r.Name, r.Category)
		}
		if !organize.SubcategoryAllowed(r.Category, r.Subcategory) {
			return nil, fmt.Errorf("rule %q: subcategory %q not allowed under %q", r.Name, r.Subcategory, r.Category)
		}
		for _, cond := range r.Conditions {
			switch cond.Op {
			case OpExists, OpEquals, OpContains:
			default:
				return nil, fmt.Errorf("rule %q: unknown condition op %q", r.Name, cond.Op)
			}
		}
		c := compiledRule{Rule: r, order: i}
		c.MIMEPatterns = lowerAll(r.MIMEPatterns)
		c.ExtPatterns = lowerAll(r.ExtPatterns)
		compiled = append(compiled, c)
	}

	// Descending priority; declaration order breaks ties.
	sort.SliceStable(compiled, func(i, j int) bool {
		if compiled[i].Priority != compiled[j].Priority {
			return compiled[i].Priority > compiled[j].Priority
		}
		return compiled[i].order < compiled[j].order
	})

	return &Engine{rules: compiled}, nil
}

// Classify evaluates the compiled rules, then the coarse MIME-prefix
// fallback, and finally gives up with category "other" at confidence 0.
// The rationale names the rule or fallback path used, for auditability.
func (e *Engine) Classify(detected organize.DetectedType, meta organize.ConsolidatedMetadata) organize.Classification {
	mime := strings.ToLower(detected.MIME)

	for _, r := range e.rules {
		if !r.matches(mime, detected.Extension, meta) {
			continue
		}
		return organize.Classification{
			Category:    r.Category,
			Subcategory: r.Subcategory,
			Confidence:  confRuleMatch,
			Method:      organize.ClassifiedByRule,
			Rationale:   fmt.Sprintf("rule %q (priority %d)", r.Name, r.Priority),
		}
	}

	if cat, desc, ok := fallbackCategory(mime); ok {
		return organize.Classification{
			Category:   cat,
			Confidence: confFallback,
			Method:     organize.ClassifiedByFallback,
			Rationale:  "fallback: " + desc,
		}
	}

	return organize.Classification{
		Category:   organize.CategoryOther,
		Confidence: confNone,
		Method:     organize.Unclassified,
		Rationale:  fmt.Sprintf("no rule or fallback matched %q, flagged for review", detected.MIME),
	}
}

// matches reports whether the rule applies: the MIME or the extension must
// match at least one pattern, and every metadata condition must hold.
func (r *compiledRule) matches(mime, ext string, meta organize.ConsolidatedMetadata) bool {
	if !matchAny(r.MIMEPatterns, mime) && !matchAny(r.ExtPatterns, ext) {
		return false
	}
	for _, cond := range r.Conditions {
		if !cond.eval(meta) {
			return false
		}
	}
	return true
}

func (c Condition) eval(meta organize.ConsolidatedMetadata) bool {
	candidates := meta.Lookup(c.Field)
	switch c.Op {
	case OpExists:
		return len(candidates) > 0
	case OpEquals:
		for _, cand := range candidates {
			if strings.EqualFold(cand.String, c.Value) {
				return true
			}
		}
	case OpContains:
		for _, cand := range candidates {
			if strings.Contains(strings.ToLower(cand.String), strings.ToLower(c.Value)) {
				return true
			}
		}
	}
	return false
}

func matchAny(patterns []string, value string) bool {
	if value == "" {
		return false
	}
	for _, p := range patterns {
		if ok, err := path.Match(p, value); err == nil && ok {
			return true
		}
	}
	return false
}

// fallbackCategory is the coarse MIME-prefix mapping used when no rule
// matches.
func fallbackCategory(mime string) (organize.Category, string, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return organize.CategoryPhotos, "image/* -> photos", true
	case strings.HasPrefix(mime, "video/"):
		return organize.CategoryVideos, "video/* -> videos", true
	case strings.HasPrefix(mime, "audio/"):
		return organize.CategoryAudio, "audio/* -> audio", true
	case mime == "application/pdf",
		strings.HasPrefix(mime, "application/vnd."),
		mime == "application/msword",
		mime == "application/epub+zip",
		strings.HasPrefix(mime, "text/"):
		return organize.CategoryDocuments, "document type -> documents", true
	case isArchiveMIME(mime):
		return organize.CategoryArchives, "archive signature -> archives", true
	}
	return "", "", false
}

func isArchiveMIME(mime string) bool {
	switch mime {
	case "application/zip", "application/gzip", "application/x-tar",
		"application/x-7z-compressed", "application/x-rar-compressed",
		"application/x-iso9660-image":
		return true
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

var _ organize.Classifier = (*Engine)(nil)
