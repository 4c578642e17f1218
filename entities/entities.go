// Package entities implements the Entity Extractor: time, name, and
// location parsing from free text (SPEC_FULL.md §4.4). No natural-language
// date parser or NER library exists anywhere in the retrieved dependency
// corpus, so all three extractors are hand-rolled on regexp/time — see
// DESIGN.md.
package entities

import (
	"regexp"
	"strings"
)

// The keyword alternatives are spelled out in both cases rather than using
// a blanket (?i) flag: under Go's case-insensitive matching, [A-Z] would
// also accept lowercase letters, defeating the point of requiring a
// capitalized word as the name candidate.
var nameRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:[Bb]ook|[Ss]chedule)\s+([A-Z][a-z]+)\b`),
	regexp.MustCompile(`\b(?:[Ff]or|[Pp]atient)\s+([A-Z][a-z]+)\b`),
	regexp.MustCompile(`\b([A-Z][a-z]+)\s+(?:tomorrow|today|next|at|for)\b`),
}

// ExtractName applies the three name regexes in order and returns the
// first match, per SPEC_FULL.md §4.4. The third regex (capitalized word
// directly followed by a time reference) can otherwise capture the action
// verb itself in a sentence-initial position ("Book for tomorrow" has no
// name, but "Book" is capitalized); a match equal to one of the action
// verbs is treated as no match rather than a found name.
func ExtractName(text string) (string, bool) {
	for _, re := range nameRegexes {
		m := re.FindStringSubmatch(text)
		if len(m) != 2 {
			continue
		}
		if strings.EqualFold(m[1], "book") || strings.EqualFold(m[1], "schedule") {
			continue
		}
		return capitalize(m[1]), true
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

var locationOrder = []string{"midtown", "uptown", "downtown", "brooklyn", "queens", "bronx", "manhattan"}

// ExtractLocation matches against a fixed ordered list of known locations,
// case-insensitively, defaulting to Midtown when none matches, per
// SPEC_FULL.md §4.4.
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, loc := range locationOrder {
		if strings.Contains(lower, loc) {
			return capitalize(loc)
		}
	}
	return "Midtown"
}
