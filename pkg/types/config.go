// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExtractionConfig holds settings for the PDF extraction engine.
type ExtractionConfig struct {
	// MaxDocumentBytes caps the size of a single input PDF. Larger
	// inputs are rejected before any backend runs (default 50 MiB).
	MaxDocumentBytes int64 `json:"max_document_bytes" yaml:"max_document_bytes"`

	// BackendTimeout bounds each backend attempt; exceeding it counts
	// as failure and triggers fallback (default 20s).
	BackendTimeout time.Duration `json:"backend_timeout" yaml:"backend_timeout"`

	// MinBlocks is the minimum block count below which a backend's
	// output is considered degenerate (default 3).
	MinBlocks int `json:"min_blocks" yaml:"min_blocks"`

	// OCRLanguage is the Tesseract language passed to the OCR backend
	// (default "eng").
	OCRLanguage string `json:"ocr_language" yaml:"ocr_language"`
}

// SegmentationConfig holds the heading-detection thresholds.
type SegmentationConfig struct {
	// HeadingFontRatio is the minimum ratio of a block's font size to
	// the body font size for the block to be a heading candidate
	// (default 1.15).
	HeadingFontRatio float64 `json:"heading_font_ratio" yaml:"heading_font_ratio"`

	// ShortTitleMaxChars is the maximum length of a bold or pattern-match
	// line still treated as a heading (default 60).
	ShortTitleMaxChars int `json:"short_title_max_chars" yaml:"short_title_max_chars"`

	// TitleBudget is the maximum stored title length; longer titles are
	// cut at the nearest word boundary (default 100).
	TitleBudget int `json:"title_budget" yaml:"title_budget"`
}

// PersonaConfig holds settings for persona inference.
type PersonaConfig struct {
	// ProfilePath optionally points to a YAML file of persona profiles
	// that replaces the built-in table.
	ProfilePath string `json:"profile_path,omitempty" yaml:"profile_path,omitempty"`

	// MinHintOverlap is the minimum keyword-overlap count for a user
	// hint to bind to a named profile instead of the generic one
	// (default 1).
	MinHintOverlap int `json:"min_hint_overlap" yaml:"min_hint_overlap"`
}

// RankingConfig holds settings for relevance ranking. Scoring weights
// are fixed constants in the ranker, not configuration.
type RankingConfig struct {
	// TopK is the number of sections emitted across the full candidate
	// set (default 5).
	TopK int `json:"top_k" yaml:"top_k"`
}

// RefinerConfig holds settings for refined-text generation.
type RefinerConfig struct {
	// Budget is the maximum refined-text length in characters
	// (default 500).
	Budget int `json:"budget" yaml:"budget"`
}

// StoreConfig holds settings for run persistence.
type StoreConfig struct {
	// DataDir is the directory holding the runs database and saved
	// result files (default "runs").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Config groups all pipeline configuration. It is loaded once at startup
// into an immutable value passed explicitly into each component
// constructor.
type Config struct {
	Extraction   ExtractionConfig   `json:"extraction" yaml:"extraction"`
	Segmentation SegmentationConfig `json:"segmentation" yaml:"segmentation"`
	Persona      PersonaConfig      `json:"persona" yaml:"persona"`
	Ranking      RankingConfig      `json:"ranking" yaml:"ranking"`
	Refiner      RefinerConfig      `json:"refiner" yaml:"refiner"`
	Store        StoreConfig        `json:"store" yaml:"store"`

	// MaxWorkers bounds the number of documents processed concurrently
	// within a collection (default 4).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// DocumentTimeout is the wall-clock ceiling for one document's
	// pipeline; exceeding it excludes the document from aggregation
	// (default 60s).
	DocumentTimeout time.Duration `json:"document_timeout" yaml:"document_timeout"`
}

// DefaultConfig returns the configuration used when no value is set.
func DefaultConfig() Config {
	return Config{
		Extraction: ExtractionConfig{
			MaxDocumentBytes: 50 << 20,
			BackendTimeout:   20 * time.Second,
			MinBlocks:        3,
			OCRLanguage:      "eng",
		},
		Segmentation: SegmentationConfig{
			HeadingFontRatio:   1.15,
			ShortTitleMaxChars: 60,
			TitleBudget:        100,
		},
		Persona: PersonaConfig{
			MinHintOverlap: 1,
		},
		Ranking: RankingConfig{
			TopK: 5,
		},
		Refiner: RefinerConfig{
			Budget: 500,
		},
		Store: StoreConfig{
			DataDir: "runs",
		},
		MaxWorkers:      4,
		DocumentTimeout: 60 * time.Second,
	}
}
