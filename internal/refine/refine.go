// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine compresses ranked section bodies into bounded-length
// spans, preferring sentences dense in persona-relevant terms over
// naive truncation.
package refine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Refiner produces the refined text for top-ranked sections.
type Refiner struct {
	cfg types.RefinerConfig
}

// NewRefiner returns a Refiner with cfg.
func NewRefiner(cfg types.RefinerConfig) *Refiner {
	return &Refiner{cfg: cfg}
}

// Refine derives a RefinedSubsection from one scored section. Bodies
// within the character budget pass through verbatim; longer bodies are
// reduced to the sentences with the highest term density against the
// profile, emitted in original order, never split mid-sentence. Output
// is non-empty whenever the body is non-empty.
func (r *Refiner) Refine(s types.ScoredSection, profile types.PersonaProfile) types.RefinedSubsection {
	body := collapseSpace(s.BodyText)
	out := body
	if len(body) > r.cfg.Budget {
		out = r.condense(body, profile)
	}
	return types.RefinedSubsection{
		DocumentID:  s.DocumentID,
		PageNumber:  s.PageNumber,
		RefinedText: out,
	}
}

type sentence struct {
	index   int
	text    string
	density float64
}

// condense selects sentences by descending term density, admitting each
// while it still fits the budget, then joins the admitted sentences in
// original order.
func (r *Refiner) condense(body string, profile types.PersonaProfile) string {
	sentences := splitSentences(body)
	for i := range sentences {
		sentences[i].density = termDensity(sentences[i].text, profile)
	}

	byDensity := make([]sentence, len(sentences))
	copy(byDensity, sentences)
	sort.SliceStable(byDensity, func(i, j int) bool {
		if byDensity[i].density != byDensity[j].density {
			return byDensity[i].density > byDensity[j].density
		}
		return byDensity[i].index < byDensity[j].index
	})

	admitted := make(map[int]bool)
	used := 0
	for _, s := range byDensity {
		cost := len(s.text)
		if len(admitted) > 0 {
			cost++
		}
		if used+cost > r.cfg.Budget {
			continue
		}
		admitted[s.index] = true
		used += cost
	}

	if len(admitted) == 0 {
		// Even the densest sentence exceeds the budget on its own; cut
		// the first sentence at a word boundary rather than emit nothing.
		return truncateWords(sentences[0].text, r.cfg.Budget)
	}

	var parts []string
	for _, s := range sentences {
		if admitted[s.index] {
			parts = append(parts, s.text)
		}
	}
	return strings.Join(parts, " ")
}

// splitSentences breaks text on terminal punctuation followed by
// whitespace. Text without terminal punctuation is one sentence.
func splitSentences(text string) []sentence {
	var out []sentence
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			out = append(out, sentence{index: len(out), text: s})
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, sentence{index: len(out), text: tail})
	}
	return out
}

// termDensity is the count of profile term occurrences per word.
func termDensity(text string, profile types.PersonaProfile) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, term := range profile.Terms() {
		hits += strings.Count(lower, strings.ToLower(term))
	}
	return float64(hits) / float64(len(words))
}

// truncateWords cuts text to at most budget bytes at a word boundary,
// falling back to the nearest rune boundary when no space precedes the
// cut.
func truncateWords(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	cut := text[:budget]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	} else {
		for len(cut) > 0 && !utf8.RuneStart(text[len(cut)]) {
			cut = cut[:len(cut)-1]
		}
	}
	return strings.TrimSpace(cut)
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
