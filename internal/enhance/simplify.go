// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enhance

import (
	"regexp"
	"strings"
)

// maxSimplifiedPhrases bounds how many quoted phrases survive
// simplification.
const maxSimplifiedPhrases = 3

var (
	reQuotedPhrase = regexp.MustCompile(`"([^"]+)"`)
	reAnyPrefix    = regexp.MustCompile(`\b(all|ti|au|abs|cat):`)
	reConnective   = regexp.MustCompile(`\b(AND|OR|ANDNOT)\b`)
	reParens       = regexp.MustCompile(`[()]`)
)

// Simplify degrades an over-specified boolean query into a plain keyword
// query, recovering a usable search when the structured form matches
// nothing. If at least one quoted phrase exists, the first three phrases
// are joined with spaces; otherwise field prefixes, connectives, and
// parentheses are stripped. Simplify is pure and idempotent: when no
// simplification is possible it returns its input unchanged, which
// callers treat as "no further fallback available".
func Simplify(structuredQuery string) string {
	matches := reQuotedPhrase.FindAllStringSubmatch(structuredQuery, -1)
	if len(matches) > 0 {
		phrases := make([]string, 0, maxSimplifiedPhrases)
		for _, m := range matches {
			phrases = append(phrases, m[1])
			if len(phrases) == maxSimplifiedPhrases {
				break
			}
		}
		return flatten(strings.Join(phrases, " "))
	}
	return flatten(structuredQuery)
}

// flatten strips boolean structure from a query and collapses whitespace.
func flatten(q string) string {
	q = reAnyPrefix.ReplaceAllString(q, "")
	q = reConnective.ReplaceAllString(q, " ")
	q = reParens.ReplaceAllString(q, " ")
	return strings.Join(strings.Fields(q), " ")
}
