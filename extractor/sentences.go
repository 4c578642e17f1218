// Package extractor implements the Answer Extractor: sentence segmentation
// plus per-sentence rescoring to pick the single best sentence from a
// retrieved chunk (SPEC_FULL.md §4.2). There is no sentence-segmentation or
// NLP library anywhere in the retrieved dependency corpus, so this stage is
// hand-rolled on regexp/strings — see DESIGN.md.
package extractor

import (
	"regexp"
	"strings"
)

const (
	minSentenceLen = 10
	maxSentenceLen = 500
	longLineLen    = 200
)

var (
	bannerRe    = regexp.MustCompile(`===[^=]+===`)
	splitRe     = regexp.MustCompile(`([.!?])\s+([A-Z])`)
	longSplitRe = regexp.MustCompile(`\.\s+`)
)

// segmentSentences strips banner markers, splits the text into candidate
// sentences, re-splits overlong fragments, drops fragments of 10 chars or
// fewer or longer than 500, and deduplicates while preserving first
// occurrence order, per SPEC_FULL.md §4.2 step 1.
func segmentSentences(text string) []string {
	stripped := bannerRe.ReplaceAllString(text, " ")

	var raw []string
	for _, line := range strings.Split(stripped, "\n\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		raw = append(raw, splitOnSentenceBoundary(line)...)
	}

	var out []string
	seen := map[string]bool{}
	for _, s := range raw {
		for _, piece := range normalizeFragment(s) {
			piece = strings.TrimSpace(piece)
			if len(piece) <= minSentenceLen || len(piece) > maxSentenceLen {
				continue
			}
			if seen[piece] {
				continue
			}
			seen[piece] = true
			out = append(out, piece)
		}
	}

	return out
}

func splitOnSentenceBoundary(line string) []string {
	marked := splitRe.ReplaceAllString(line, "$1\x00$2")
	return strings.Split(marked, "\x00")
}

// normalizeFragment re-splits a fragment that is overlong or lacks terminal
// punctuation on ". " boundaries, re-terminating each piece with a period.
func normalizeFragment(s string) []string {
	trimmed := strings.TrimSpace(s)
	hasTerminal := strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?")

	if len(trimmed) <= longLineLen && hasTerminal {
		return []string{trimmed}
	}

	parts := longSplitRe.Split(trimmed, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasSuffix(p, ".") && !strings.HasSuffix(p, "!") && !strings.HasSuffix(p, "?") {
			p += "."
		}
		out = append(out, p)
	}
	return out
}
