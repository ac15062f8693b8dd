// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pdiddy/insight-engine/pkg/types"
)

func testProfile() types.PersonaProfile {
	return types.PersonaProfile{
		PersonaType:    "researcher",
		CustomKeywords: []string{"research", "study", "findings", "data"},
	}
}

func scoredSection(body string) types.ScoredSection {
	return types.ScoredSection{
		Section: types.Section{
			Title:      "Results",
			PageNumber: 2,
			BodyText:   body,
			DocumentID: "paper.pdf",
		},
	}
}

func TestRefineVerbatimWithinBudget(t *testing.T) {
	r := NewRefiner(types.RefinerConfig{Budget: 500})

	body := "Short body text that fits comfortably."
	out := r.Refine(scoredSection(body), testProfile())
	if out.RefinedText != body {
		t.Errorf("refined = %q, want verbatim body", out.RefinedText)
	}
	if out.DocumentID != "paper.pdf" || out.PageNumber != 2 {
		t.Errorf("identity fields = %s page %d", out.DocumentID, out.PageNumber)
	}
}

func TestRefinePrefersDenseSentences(t *testing.T) {
	r := NewRefiner(types.RefinerConfig{Budget: 120})

	body := "The weather that week was unremarkable and the venue rather plain overall. " +
		"The study findings show strong research data. " +
		"Catering arrangements were handled by a local firm with care."
	out := r.Refine(scoredSection(body), testProfile())

	if !strings.Contains(out.RefinedText, "study findings") {
		t.Errorf("dense sentence missing from refined text: %q", out.RefinedText)
	}
	if len(out.RefinedText) > 120 {
		t.Errorf("refined text length %d exceeds budget", len(out.RefinedText))
	}
}

func TestRefinePreservesOriginalOrder(t *testing.T) {
	r := NewRefiner(types.RefinerConfig{Budget: 90})

	body := "First the research data was collected. " +
		"An unrelated aside about office furniture and seating plans follows here at length. " +
		"Then the study findings were published."
	out := r.Refine(scoredSection(body), testProfile())

	first := strings.Index(out.RefinedText, "research data")
	second := strings.Index(out.RefinedText, "study findings")
	if first == -1 || second == -1 {
		t.Fatalf("expected both dense sentences, got %q", out.RefinedText)
	}
	if first > second {
		t.Error("selected sentences not in original order")
	}
}

func TestRefineNeverSplitsSentences(t *testing.T) {
	r := NewRefiner(types.RefinerConfig{Budget: 60})

	body := "The research study data findings are described. " +
		"Another full sentence with research terms and study data inside it continues."
	out := r.Refine(scoredSection(body), testProfile())

	if len(out.RefinedText) > 60 {
		t.Fatalf("length %d exceeds budget", len(out.RefinedText))
	}
	if out.RefinedText != "The research study data findings are described." {
		t.Errorf("refined = %q, want the single sentence that fits", out.RefinedText)
	}
}

func TestRefineNonEmptyWhenNoSentenceFits(t *testing.T) {
	r := NewRefiner(types.RefinerConfig{Budget: 30})

	body := "This single very long sentence simply cannot be made to fit inside the configured budget at all."
	out := r.Refine(scoredSection(body), testProfile())

	if out.RefinedText == "" {
		t.Fatal("refined text must be non-empty for non-empty input")
	}
	if len(out.RefinedText) > 30 {
		t.Errorf("length %d exceeds budget", len(out.RefinedText))
	}
}

func TestRefineTruncationKeepsValidUTF8(t *testing.T) {
	r := NewRefiner(types.RefinerConfig{Budget: 25})

	// One unbroken run of multibyte runes forces the fallback cut.
	body := strings.Repeat("é", 40) + "."
	out := r.Refine(scoredSection(body), testProfile())

	if !utf8.ValidString(out.RefinedText) {
		t.Fatalf("refined text is not valid UTF-8: %q", out.RefinedText)
	}
	if out.RefinedText == "" {
		t.Fatal("refined text must be non-empty for non-empty input")
	}
	if len(out.RefinedText) > 25 {
		t.Errorf("length %d exceeds budget", len(out.RefinedText))
	}
}

func TestRefineBudgetInvariant(t *testing.T) {
	r := NewRefiner(types.RefinerConfig{Budget: 100})

	bodies := []string{
		"",
		"tiny",
		strings.Repeat("Research data point. ", 30),
		strings.Repeat("Filler sentence without matches. ", 20),
	}
	for _, body := range bodies {
		out := r.Refine(scoredSection(body), testProfile())
		if len(out.RefinedText) > 100 {
			t.Errorf("budget exceeded for body %q...: %d chars", body[:min(20, len(body))], len(out.RefinedText))
		}
		if strings.TrimSpace(body) != "" && out.RefinedText == "" {
			t.Errorf("empty output for non-empty body %q...", body[:min(20, len(body))])
		}
	}
}
