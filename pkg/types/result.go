// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// The JSON field names and nesting in this file are a compatibility
// contract with downstream consumers and must not change.

// ResultMetadata echoes the request parameters and records when the
// analysis ran. ProcessingTimestamp is ISO-8601.
type ResultMetadata struct {
	InputDocuments      []string `json:"input_documents" yaml:"input_documents"`
	Persona             string   `json:"persona" yaml:"persona"`
	JobToBeDone         string   `json:"job_to_be_done" yaml:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp" yaml:"processing_timestamp"`
}

// ExtractedSectionEntry is one ranked section in the output contract.
type ExtractedSectionEntry struct {
	Document       string `json:"document" yaml:"document"`
	SectionTitle   string `json:"section_title" yaml:"section_title"`
	ImportanceRank int    `json:"importance_rank" yaml:"importance_rank"`
	PageNumber     int    `json:"page_number" yaml:"page_number"`
}

// SubsectionEntry is one refined-text span in the output contract, in
// the same order as the extracted sections it derives from.
type SubsectionEntry struct {
	Document    string `json:"document" yaml:"document"`
	RefinedText string `json:"refined_text" yaml:"refined_text"`
	PageNumber  int    `json:"page_number" yaml:"page_number"`
}

// AnalysisResult is the terminal aggregate of one pipeline run. It is
// created once per request and never mutated after construction.
type AnalysisResult struct {
	Metadata           ResultMetadata          `json:"metadata" yaml:"metadata"`
	ExtractedSections  []ExtractedSectionEntry `json:"extracted_sections" yaml:"extracted_sections"`
	SubsectionAnalysis []SubsectionEntry       `json:"subsection_analysis" yaml:"subsection_analysis"`
}

// NewAnalysisResult assembles the output contract from ranked sections
// and their refined subsections. Sections arrive rank-ordered; the
// subsection slice is one-to-one with them.
func NewAnalysisResult(meta ResultMetadata, sections []ScoredSection, refined []RefinedSubsection) AnalysisResult {
	result := AnalysisResult{
		Metadata:           meta,
		ExtractedSections:  make([]ExtractedSectionEntry, 0, len(sections)),
		SubsectionAnalysis: make([]SubsectionEntry, 0, len(refined)),
	}

	for _, s := range sections {
		result.ExtractedSections = append(result.ExtractedSections, ExtractedSectionEntry{
			Document:       s.DocumentID,
			SectionTitle:   s.Title,
			ImportanceRank: s.ImportanceRank,
			PageNumber:     s.PageNumber,
		})
	}

	for _, r := range refined {
		result.SubsectionAnalysis = append(result.SubsectionAnalysis, SubsectionEntry{
			Document:    r.DocumentID,
			RefinedText: r.RefinedText,
			PageNumber:  r.PageNumber,
		})
	}

	return result
}
