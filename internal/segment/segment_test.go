// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pdiddy/insight-engine/pkg/types"
)

func testCfg() types.SegmentationConfig {
	return types.SegmentationConfig{
		HeadingFontRatio:   1.15,
		ShortTitleMaxChars: 60,
		TitleBudget:        100,
	}
}

func block(text string, page int, size float64) types.RawBlock {
	return types.RawBlock{
		Text:       text,
		Page:       page,
		FontSize:   size,
		FontWeight: types.WeightNormal,
		Source:     types.SourcePrimary,
	}
}

func boldBlock(text string, page int, size float64) types.RawBlock {
	b := block(text, page, size)
	b.FontWeight = types.WeightBold
	return b
}

func TestSegmentFontSizeHeadings(t *testing.T) {
	s := NewSegmenter(testCfg())

	blocks := []types.RawBlock{
		block("Introduction", 1, 16),
		block("This study examines passive cooling techniques in dense urban housing.", 1, 10),
		block("It builds on two decades of prior field measurements.", 1, 10),
		block("Methods", 2, 16),
		block("Sensors were installed across forty apartments.", 2, 10),
	}

	res := s.Segment(blocks, "cooling.pdf")
	if res.Degraded {
		t.Fatal("expected heading-based segmentation, got degraded fallback")
	}
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(res.Sections))
	}

	intro := res.Sections[0]
	if intro.Title != "Introduction" {
		t.Errorf("section 0 title = %q, want Introduction", intro.Title)
	}
	if intro.Level != 1 {
		t.Errorf("section 0 level = %d, want 1", intro.Level)
	}
	if intro.PageNumber != 1 {
		t.Errorf("section 0 page = %d, want 1", intro.PageNumber)
	}
	if !strings.Contains(intro.BodyText, "passive cooling") {
		t.Errorf("section 0 body missing expected text: %q", intro.BodyText)
	}
	if intro.DocumentID != "cooling.pdf" {
		t.Errorf("section 0 document = %q", intro.DocumentID)
	}

	if res.Sections[1].Title != "Methods" || res.Sections[1].PageNumber != 2 {
		t.Errorf("section 1 = %q page %d, want Methods page 2",
			res.Sections[1].Title, res.Sections[1].PageNumber)
	}
}

func TestSegmentHeadingLevelsByFontRank(t *testing.T) {
	s := NewSegmenter(testCfg())

	blocks := []types.RawBlock{
		block("Results", 1, 18),
		block("Overall effects were consistent across sites.", 1, 10),
		block("Temperature", 1, 14),
		block("Mean indoor temperature dropped by two degrees.", 1, 10),
		block("Humidity", 2, 14),
		block("Relative humidity stayed within comfort bounds.", 2, 10),
	}

	res := s.Segment(blocks, "doc.pdf")
	if len(res.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(res.Sections))
	}

	wantLevels := []int{1, 2, 2}
	for i, want := range wantLevels {
		if res.Sections[i].Level != want {
			t.Errorf("section %d (%s) level = %d, want %d",
				i, res.Sections[i].Title, res.Sections[i].Level, want)
		}
	}
}

func TestSegmentPreamble(t *testing.T) {
	s := NewSegmenter(testCfg())

	blocks := []types.RawBlock{
		block("Field Report 2025\nPrepared for the city housing office.", 1, 10),
		block("Findings", 1, 16),
		block("Shade coverage was the strongest predictor of comfort.", 1, 10),
	}

	res := s.Segment(blocks, "report.pdf")
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(res.Sections))
	}

	pre := res.Sections[0]
	if pre.Level != 0 {
		t.Errorf("preamble level = %d, want 0", pre.Level)
	}
	if pre.Title != "Field Report 2025" {
		t.Errorf("preamble title = %q", pre.Title)
	}
	if !strings.Contains(pre.BodyText, "housing office") {
		t.Errorf("preamble body missing text: %q", pre.BodyText)
	}
}

func TestSegmentBoldAndPatternHeadingsWithoutFonts(t *testing.T) {
	s := NewSegmenter(testCfg())

	// Content-stream extraction carries no font sizes; numbered and
	// all-caps patterns still yield headings.
	blocks := []types.RawBlock{
		{Text: "1. Scope", Page: 1, Source: types.SourceSecondary},
		{Text: "This document covers procurement rules for small vendors.", Page: 1, Source: types.SourceSecondary},
		{Text: "DEFINITIONS", Page: 2, Source: types.SourceSecondary},
		{Text: "Vendor means any registered supplier of goods or services.", Page: 2, Source: types.SourceSecondary},
	}

	res := s.Segment(blocks, "rules.pdf")
	if res.Degraded {
		t.Fatal("pattern headings should avoid the degraded fallback")
	}
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(res.Sections))
	}
	if res.Sections[0].Title != "1. Scope" {
		t.Errorf("section 0 title = %q", res.Sections[0].Title)
	}
	if res.Sections[1].Title != "DEFINITIONS" {
		t.Errorf("section 1 title = %q", res.Sections[1].Title)
	}
}

func TestSegmentBoldShortLineHeading(t *testing.T) {
	s := NewSegmenter(testCfg())

	blocks := []types.RawBlock{
		boldBlock("Executive Summary", 1, 10),
		block("Adoption exceeded projections in every region.", 1, 10),
	}

	res := s.Segment(blocks, "summary.pdf")
	if len(res.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.Sections))
	}
	if res.Sections[0].Title != "Executive Summary" {
		t.Errorf("title = %q", res.Sections[0].Title)
	}
}

func TestSegmentPageFallback(t *testing.T) {
	s := NewSegmenter(testCfg())

	blocks := []types.RawBlock{
		{Text: "uniform body text with nothing heading-like on page one.", Page: 1, Source: types.SourceSecondary},
		{Text: "more of the same texture continues here.", Page: 1, Source: types.SourceSecondary},
		{Text: "page two also reads as one undifferentiated stream.", Page: 2, Source: types.SourceSecondary},
	}

	res := s.Segment(blocks, "flat.pdf")
	if !res.Degraded {
		t.Fatal("expected degraded page-boundary fallback")
	}
	if len(res.Sections) != 2 {
		t.Fatalf("expected one section per page, got %d", len(res.Sections))
	}
	for i, want := range []int{1, 2} {
		if res.Sections[i].PageNumber != want {
			t.Errorf("section %d page = %d, want %d", i, res.Sections[i].PageNumber, want)
		}
	}
	if res.Sections[0].Title == "" {
		t.Error("fallback section should be titled from its first line")
	}
}

func TestTruncateTitleRuneBoundary(t *testing.T) {
	// A spaceless multibyte title must be cut on a rune boundary.
	title := strings.Repeat("é", 80)
	got := truncateTitle(title, 25)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid UTF-8: %q", got)
	}
	if got == "" || len(got) > 25 {
		t.Errorf("truncated title = %q (%d bytes), want non-empty within 25 bytes", got, len(got))
	}

	// Word-boundary truncation still wins when a space precedes the cut.
	if got := truncateTitle("Short words only here", 12); got != "Short words" {
		t.Errorf("truncateTitle = %q, want %q", got, "Short words")
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	s := NewSegmenter(testCfg())
	res := s.Segment(nil, "empty.pdf")
	if len(res.Sections) != 0 || res.Degraded {
		t.Errorf("empty input should yield no sections, got %+v", res)
	}
}

func TestSegmentMonotonicPages(t *testing.T) {
	s := NewSegmenter(testCfg())

	blocks := []types.RawBlock{
		block("Alpha", 1, 16),
		block("body", 1, 10),
		block("Beta", 3, 16),
		block("body", 3, 10),
		block("Gamma", 7, 16),
	}

	res := s.Segment(blocks, "doc.pdf")
	last := 0
	for _, sec := range res.Sections {
		if sec.PageNumber < last {
			t.Fatalf("page numbers not monotonic: %d after %d", sec.PageNumber, last)
		}
		last = sec.PageNumber
	}
}

func TestSegmentPlaceholderHeading(t *testing.T) {
	s := NewSegmenter(testCfg())

	blocks := []types.RawBlock{
		block("Appendices", 1, 16),
		block("Appendix A", 1, 16),
		block("Raw sensor tables follow.", 1, 10),
	}

	res := s.Segment(blocks, "doc.pdf")
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(res.Sections))
	}
	if !res.Sections[0].IsPlaceholder() {
		t.Error("back-to-back heading should produce a placeholder section")
	}
	if res.Sections[1].IsPlaceholder() {
		t.Error("second section has body text, should not be a placeholder")
	}
}
