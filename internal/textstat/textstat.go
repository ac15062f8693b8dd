// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textstat computes lightweight readability and theme statistics
// for analyzed content.
package textstat

import (
	"regexp"
	"sort"
	"strings"
)

// Stats summarizes one body of text.
type Stats struct {
	WordCount   int      `json:"word_count" yaml:"word_count"`
	Readability float64  `json:"readability_score" yaml:"readability_score"`
	Complexity  string   `json:"complexity_level" yaml:"complexity_level"`
	KeyThemes   []string `json:"key_themes" yaml:"key_themes"`
}

// themeMinLength filters out short words when extracting themes.
const themeMinLength = 5

// maxThemes caps the key-theme list.
const maxThemes = 5

var wordRe = regexp.MustCompile(`\b\w+\b`)

// Analyze computes word count, Flesch reading ease, a complexity label,
// and the most frequent content words of text.
func Analyze(text string) Stats {
	words := strings.Fields(text)
	score := fleschReadingEase(text)
	return Stats{
		WordCount:   len(words),
		Readability: score,
		Complexity:  complexityLevel(score),
		KeyThemes:   keyThemes(text),
	}
}

// fleschReadingEase computes the standard Flesch formula with a
// vowel-group syllable estimate. Empty text scores zero.
func fleschReadingEase(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))
	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// countSyllables estimates syllables as vowel groups, trimming a silent
// trailing 'e'. Every word counts at least one.
func countSyllables(word string) int {
	word = strings.ToLower(strings.Trim(word, ".,;:!?\"'()"))
	if word == "" {
		return 1
	}
	if strings.HasSuffix(word, "e") && len(word) > 2 {
		word = word[:len(word)-1]
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if count == 0 {
		return 1
	}
	return count
}

// complexityLevel maps a Flesch score to its conventional label.
func complexityLevel(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy"
	case score >= 80:
		return "Easy"
	case score >= 70:
		return "Fairly Easy"
	case score >= 60:
		return "Standard"
	case score >= 50:
		return "Fairly Difficult"
	case score >= 30:
		return "Difficult"
	default:
		return "Very Difficult"
	}
}

// keyThemes returns the most frequent words of at least themeMinLength
// characters, ordered by descending frequency with alphabetical
// tie-break for determinism.
func keyThemes(text string) []string {
	freq := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) >= themeMinLength {
			freq[w]++
		}
	}

	themes := make([]string, 0, len(freq))
	for w := range freq {
		themes = append(themes, w)
	}
	sort.Slice(themes, func(i, j int) bool {
		if freq[themes[i]] != freq[themes[j]] {
			return freq[themes[i]] > freq[themes[j]]
		}
		return themes[i] < themes[j]
	})

	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}
