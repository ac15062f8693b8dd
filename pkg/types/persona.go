// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExpertiseLevel grades the depth of content a persona expects.
type ExpertiseLevel string

const (
	ExpertiseBeginner     ExpertiseLevel = "beginner"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseAdvanced     ExpertiseLevel = "advanced"
)

// PersonaProfile is a named reader-role configuration used to weight
// relevance scoring. Profiles are loaded once at startup and never
// mutated at runtime, so they are safe to share across document workers.
type PersonaProfile struct {
	// PersonaType is the profile identifier, lowercase with underscores
	// (e.g. "researcher", "business_analyst").
	PersonaType string `json:"persona_type" yaml:"persona_type"`

	// FocusAreas describe what this persona reads for.
	FocusAreas []string `json:"focus_areas" yaml:"focus_areas"`

	// ExpertiseLevel is the assumed depth of the reader.
	ExpertiseLevel ExpertiseLevel `json:"expertise_level" yaml:"expertise_level"`

	// CustomKeywords are content terms that signal relevance for this
	// persona, matched case-insensitively on word boundaries.
	CustomKeywords []string `json:"custom_keywords" yaml:"custom_keywords"`
}

// Terms returns the union of focus areas and custom keywords, the term
// set used for both inference and relevance scoring.
func (p PersonaProfile) Terms() []string {
	terms := make([]string, 0, len(p.FocusAreas)+len(p.CustomKeywords))
	terms = append(terms, p.FocusAreas...)
	terms = append(terms, p.CustomKeywords...)
	return terms
}
