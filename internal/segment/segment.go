// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment organizes extracted text blocks into titled sections
// using font metadata and typographic heading patterns.
package segment

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// fontBucket quantizes font sizes so minor renderer jitter does not
// split one logical size into several.
const fontBucket = 0.5

// Result holds the sections produced for one document. Degraded marks
// that no heading candidates were found and the page-boundary fallback
// was used instead.
type Result struct {
	Sections []types.Section
	Degraded bool
}

// Segmenter detects headings and assembles sections from raw blocks.
type Segmenter struct {
	cfg types.SegmentationConfig
}

// NewSegmenter returns a Segmenter configured with cfg.
func NewSegmenter(cfg types.SegmentationConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Segment groups blocks into sections for the document identified by
// documentID. Blocks must be in reading order; sections come out in the
// same order, each stamped with the page its heading (or first block)
// appeared on.
func (s *Segmenter) Segment(blocks []types.RawBlock, documentID string) Result {
	if len(blocks) == 0 {
		return Result{}
	}

	bodySize := bodyFontSize(blocks)
	candidates := make([]bool, len(blocks))
	any := false
	for i, b := range blocks {
		if s.isHeading(b, bodySize) {
			candidates[i] = true
			any = true
		}
	}

	if !any {
		return Result{Sections: s.pageSections(blocks, documentID), Degraded: true}
	}

	levels := headingLevels(blocks, candidates)
	return Result{Sections: s.assemble(blocks, candidates, levels, documentID)}
}

// isHeading applies the three heading signals: font size relative to the
// body text, bold weight on a short line, and numbered or all-caps
// heading patterns.
func (s *Segmenter) isHeading(b types.RawBlock, bodySize float64) bool {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return false
	}

	if b.HasFontMetadata() && bodySize > 0 && b.FontSize/bodySize >= s.cfg.HeadingFontRatio {
		return true
	}
	short := len(text) <= s.cfg.ShortTitleMaxChars
	if b.FontWeight == types.WeightBold && short {
		return true
	}
	if short && (matchesNumberedPattern(text) || isAllCaps(firstLine(text))) {
		return true
	}
	return false
}

// bodyFontSize estimates the dominant body text size as the mode of
// block font sizes bucketed at half-point granularity, weighted by text
// length so a single large title cannot outvote the running text.
func bodyFontSize(blocks []types.RawBlock) float64 {
	weights := make(map[float64]int)
	for _, b := range blocks {
		if !b.HasFontMetadata() {
			continue
		}
		bucket := math.Round(b.FontSize/fontBucket) * fontBucket
		weights[bucket] += len(b.Text)
	}

	var best float64
	bestWeight := 0
	for bucket, w := range weights {
		if w > bestWeight || (w == bestWeight && bucket < best) {
			best = bucket
			bestWeight = w
		}
	}
	return best
}

// headingLevels ranks the distinct heading font sizes in descending
// order; the largest size becomes level 1. Candidates lacking font
// metadata sit one level below the deepest sized heading.
func headingLevels(blocks []types.RawBlock, candidates []bool) map[int]int {
	sizes := make(map[float64]bool)
	for i, b := range blocks {
		if candidates[i] && b.HasFontMetadata() {
			bucket := math.Round(b.FontSize/fontBucket) * fontBucket
			sizes[bucket] = true
		}
	}

	distinct := make([]float64, 0, len(sizes))
	for s := range sizes {
		distinct = append(distinct, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))

	rank := make(map[float64]int, len(distinct))
	for i, s := range distinct {
		rank[s] = i + 1
	}

	levels := make(map[int]int)
	for i, b := range blocks {
		if !candidates[i] {
			continue
		}
		if b.HasFontMetadata() {
			bucket := math.Round(b.FontSize/fontBucket) * fontBucket
			levels[i] = rank[bucket]
		} else {
			levels[i] = len(distinct) + 1
		}
	}
	return levels
}

// assemble walks the blocks in order, starting a new section at each
// heading candidate and attaching body blocks to the most recent
// section. Blocks before the first heading form an implicit level-0
// preamble titled from their first line.
func (s *Segmenter) assemble(blocks []types.RawBlock, candidates []bool, levels map[int]int, documentID string) []types.Section {
	var sections []types.Section
	var current *types.Section
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.BodyText = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *current)
		current = nil
		body = body[:0]
	}

	for i, b := range blocks {
		if candidates[i] {
			flush()
			current = &types.Section{
				Title:      truncateTitle(collapseSpace(b.Text), s.cfg.TitleBudget),
				Level:      levels[i],
				PageNumber: b.Page,
				DocumentID: documentID,
				SeqIndex:   len(sections),
			}
			continue
		}

		if current == nil {
			current = &types.Section{
				Title:      truncateTitle(firstLine(b.Text), s.cfg.TitleBudget),
				Level:      0,
				PageNumber: b.Page,
				DocumentID: documentID,
				SeqIndex:   0,
			}
		}
		body = append(body, b.Text)
	}
	flush()

	return sections
}

// pageSections is the fallback when no heading candidates exist: one
// section per page, titled from the first line on that page.
func (s *Segmenter) pageSections(blocks []types.RawBlock, documentID string) []types.Section {
	var sections []types.Section
	var current *types.Section
	var body []string
	page := -1

	flush := func() {
		if current == nil {
			return
		}
		current.BodyText = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *current)
		current = nil
		body = body[:0]
	}

	for _, b := range blocks {
		if b.Page != page {
			flush()
			page = b.Page
			current = &types.Section{
				Title:      truncateTitle(firstLine(b.Text), s.cfg.TitleBudget),
				Level:      1,
				PageNumber: b.Page,
				DocumentID: documentID,
				SeqIndex:   len(sections),
			}
		}
		body = append(body, b.Text)
	}
	flush()

	return sections
}

// collapseSpace folds runs of whitespace, including newlines, into
// single spaces for use in titles.
func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
