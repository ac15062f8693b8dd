// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the document
// intelligence pipeline: extracted blocks, structural sections, scored
// sections, and the terminal analysis result.
package types

import "strings"

// ExtractionSource identifies which extraction backend produced a block.
type ExtractionSource string

const (
	SourcePrimary   ExtractionSource = "primary"
	SourceSecondary ExtractionSource = "secondary"
	SourceTertiary  ExtractionSource = "tertiary"
	SourceOCR       ExtractionSource = "ocr"
)

// FontWeight distinguishes regular from bold text runs.
type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

// FontSizeUnknown is the sentinel font size used by backends that carry
// no font metadata (content-stream and OCR extraction).
const FontSizeUnknown = 0.0

// BBox is an axis-aligned bounding box in PDF user-space coordinates.
type BBox struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// RawBlock is one atomic text span produced by the extraction engine.
// Blocks are immutable once produced and ordered in reading order within
// a page, then by page.
type RawBlock struct {
	// Text is the block's text content, whitespace-normalized.
	Text string `json:"text" yaml:"text"`

	// Page is the 1-based page number the block appears on.
	Page int `json:"page" yaml:"page"`

	// BBox is the block's bounding box. Zero for backends without
	// positional metadata.
	BBox BBox `json:"bbox" yaml:"bbox"`

	// FontSize is the dominant font size of the block in points, or
	// FontSizeUnknown when the backend carries no font metadata.
	FontSize float64 `json:"font_size" yaml:"font_size"`

	// FontWeight is bold when the block's font name indicates a bold face.
	FontWeight FontWeight `json:"font_weight" yaml:"font_weight"`

	// Source records which backend produced the block.
	Source ExtractionSource `json:"extraction_source" yaml:"extraction_source"`
}

// HasFontMetadata reports whether the block carries a usable font size.
func (b RawBlock) HasFontMetadata() bool {
	return b.FontSize > FontSizeUnknown
}

// Section is a contiguous run of blocks under one heading. Its PageNumber
// is the page of its first constituent block. A pure-heading placeholder
// has empty BodyText and is excluded from ranking.
type Section struct {
	// Title is the heading text, trimmed and cut at a word boundary when
	// it exceeds the title budget.
	Title string `json:"title" yaml:"title"`

	// Level is the heading depth. Level 0 marks the implicit preamble
	// section formed by blocks before the first detected heading.
	Level int `json:"level" yaml:"level"`

	// PageNumber is the 1-based page of the section's first block.
	PageNumber int `json:"page_number" yaml:"page_number"`

	// BodyText is the concatenated text of the section's body blocks.
	BodyText string `json:"body_text" yaml:"body_text"`

	// DocumentID identifies the source document within a collection.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// SeqIndex is the section's position in document declaration order,
	// used as the final deterministic tie-break during ranking.
	SeqIndex int `json:"-" yaml:"-"`
}

// IsPlaceholder reports whether the section is a pure-heading placeholder
// with no body text.
func (s Section) IsPlaceholder() bool {
	return strings.TrimSpace(s.BodyText) == ""
}

// ScoredSection is a Section with its relevance score and importance
// rank. Rank 1 is the most relevant.
type ScoredSection struct {
	Section `yaml:",inline"`

	// RelevanceScore is the weighted persona/job relevance score.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// ImportanceRank is the 1-based sequential rank assigned after all
	// sections in scope are scored and ordered.
	ImportanceRank int `json:"importance_rank" yaml:"importance_rank"`
}

// RefinedSubsection is the length-bounded refined text derived from one
// ranked section's body.
type RefinedSubsection struct {
	DocumentID  string `json:"document_id" yaml:"document_id"`
	PageNumber  int    `json:"page_number" yaml:"page_number"`
	RefinedText string `json:"refined_text" yaml:"refined_text"`
}
