// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Quality captures metrics about an extraction attempt, used to decide
// whether a textually successful backend still produced garbage.
type Quality struct {
	// PrintableRatio is the share of printable runes across all blocks.
	PrintableRatio float64

	// WordlikeRatio is the share of tokens with a word-like length (2-15 runes).
	WordlikeRatio float64
}

// measureQuality computes quality ratios over the concatenated block text.
func measureQuality(blocks []types.RawBlock) Quality {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text)
		sb.WriteByte(' ')
	}
	text := sb.String()

	return Quality{
		PrintableRatio: printableRatio(text),
		WordlikeRatio:  wordlikeRatio(text),
	}
}

// printableRatio returns the share of printable runes, treating the
// Unicode private use area, U+FFFD, and non-whitespace control characters
// as garbage.
func printableRatio(text string) float64 {
	if text == "" {
		return 1.0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	if r == 0xFFFD {
		return true
	}
	if r < 0x0020 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// wordlikeRatio returns the share of whitespace-separated tokens whose
// length falls in the 2-15 rune range typical of natural-language words.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		n := len([]rune(f))
		if n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
