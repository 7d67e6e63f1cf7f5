// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enhance

import (
	"regexp"
	"strings"
)

// leadingPrefixes are explanatory lead-ins models sometimes emit despite
// the output constraints. Matched case-insensitively at the start.
var leadingPrefixes = []string{
	"here is the enhanced query:",
	"the enhanced query is:",
	"enhanced query:",
	"query:",
	"here's the query:",
	"the query is:",
}

// explanationMarkers signal trailing prose. The query is truncated at the
// first marker occurrence past the start of the string.
var explanationMarkers = []string{
	"this query",
	"the query",
	"this enhanced",
	"the enhanced",
	"this will",
	"this should",
}

var (
	reAndNot   = regexp.MustCompile(`(?i)\bandnot\b`)
	reAnd      = regexp.MustCompile(`(?i)\band\b`)
	reOr       = regexp.MustCompile(`(?i)\bor\b`)
	reTitle    = regexp.MustCompile(`(?i)\btitle:`)
	reAuthor   = regexp.MustCompile(`(?i)\bauthor:`)
	reAbstract = regexp.MustCompile(`(?i)\babstract:`)
	reCategory = regexp.MustCompile(`(?i)\bcategory:`)
	reAll      = regexp.MustCompile(`(?i)\ball:`)

	reFieldPrefix = regexp.MustCompile(`(all:|ti:|au:|abs:|cat:)`)
)

// Sanitize cleans a model-produced query into valid arXiv syntax: it
// strips leading explanatory phrases, truncates trailing prose, upcases
// boolean operators, normalizes field-prefix spelling, and wraps the
// whole string in all: when no recognized prefix is present. Sanitizing
// an already-clean query is a no-op.
func Sanitize(query string) string {
	cleaned := strings.TrimSpace(query)
	if cleaned == "" {
		return ""
	}

	for _, prefix := range leadingPrefixes {
		if strings.HasPrefix(strings.ToLower(cleaned), prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
		}
	}

	lower := strings.ToLower(cleaned)
	for _, marker := range explanationMarkers {
		if idx := strings.Index(lower, marker); idx > 0 {
			cleaned = strings.TrimSpace(cleaned[:idx])
			break
		}
	}

	cleaned = reAndNot.ReplaceAllString(cleaned, "ANDNOT")
	cleaned = reAnd.ReplaceAllString(cleaned, "AND")
	cleaned = reOr.ReplaceAllString(cleaned, "OR")

	cleaned = reTitle.ReplaceAllString(cleaned, "ti:")
	cleaned = reAuthor.ReplaceAllString(cleaned, "au:")
	cleaned = reAbstract.ReplaceAllString(cleaned, "abs:")
	cleaned = reCategory.ReplaceAllString(cleaned, "cat:")
	cleaned = reAll.ReplaceAllString(cleaned, "all:")

	if cleaned != "" && !reFieldPrefix.MatchString(cleaned) {
		cleaned = "all:" + cleaned
	}

	return cleaned
}
