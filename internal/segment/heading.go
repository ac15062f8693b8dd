// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// numberedPatterns match common heading numbering schemes: decimal
// outlines, chapter/section words, Roman numerals, and letter prefixes.
var numberedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+\S`),
	regexp.MustCompile(`^(?i)(chapter|section|part|appendix)\s+\d+`),
	regexp.MustCompile(`^[IVXLCDM]+\.\s`),
	regexp.MustCompile(`^[A-Z][.)]\s`),
}

// matchesNumberedPattern reports whether text starts like a numbered
// heading.
func matchesNumberedPattern(text string) bool {
	text = strings.TrimSpace(text)
	for _, p := range numberedPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// isAllCaps reports whether text is at least 90% uppercase letters, with
// a minimum of three letters so acronyms alone do not qualify as lines.
func isAllCaps(text string) bool {
	text = strings.TrimSpace(text)
	upper, lower := 0, 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
		case r >= 'a' && r <= 'z':
			lower++
		}
	}
	if upper+lower < 3 {
		return false
	}
	return lower == 0 || float64(upper)/float64(upper+lower) > 0.9
}

// truncateTitle cuts text to at most budget characters at the nearest
// word boundary. Titles need not preserve full semantic meaning.
func truncateTitle(text string, budget int) string {
	text = strings.TrimSpace(text)
	if budget <= 0 || len(text) <= budget {
		return text
	}

	cut := text[:budget]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	} else {
		// No space before the cut: back off to a rune boundary so the
		// title never carries a split multibyte character.
		for len(cut) > 0 && !utf8.RuneStart(text[len(cut)]) {
			cut = cut[:len(cut)-1]
		}
	}
	return strings.TrimSpace(cut)
}

// firstLine returns the first newline-delimited line of text; if text has
// no newline it is its own first line.
func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
