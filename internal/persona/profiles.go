// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package persona binds documents to reader-role profiles, either from a
// user-supplied hint or by scoring document text against the profile set.
package persona

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// GeneralPersona is the fallback identifier when no profile matches.
const GeneralPersona = "general"

// builtinProfiles returns the closed profile set in declaration order.
// Declaration order is the tie-break for inference, so it is stable.
func builtinProfiles() []types.PersonaProfile {
	return []types.PersonaProfile{
		{
			PersonaType:    "researcher",
			FocusAreas:     []string{"academic", "research"},
			ExpertiseLevel: types.ExpertiseAdvanced,
			CustomKeywords: []string{"research", "study", "analysis", "methodology", "findings", "conclusion", "data", "results", "hypothesis", "experiment"},
		},
		{
			PersonaType:    "student",
			FocusAreas:     []string{"education", "learning"},
			ExpertiseLevel: types.ExpertiseBeginner,
			CustomKeywords: []string{"learning", "education", "course", "assignment", "study", "academic", "university", "college", "textbook", "lecture"},
		},
		{
			PersonaType:    "business_analyst",
			FocusAreas:     []string{"business", "financial"},
			ExpertiseLevel: types.ExpertiseIntermediate,
			CustomKeywords: []string{"business", "market", "strategy", "analysis", "report", "financial", "performance", "metrics", "revenue", "profit"},
		},
		{
			PersonaType:    "technical_writer",
			FocusAreas:     []string{"technical", "documentation"},
			ExpertiseLevel: types.ExpertiseIntermediate,
			CustomKeywords: []string{"technical", "documentation", "manual", "guide", "procedure", "specification", "api", "code", "system", "implementation"},
		},
		{
			PersonaType:    "legal_professional",
			FocusAreas:     []string{"legal", "contracts"},
			ExpertiseLevel: types.ExpertiseAdvanced,
			CustomKeywords: []string{"legal", "law", "contract", "agreement", "clause", "jurisdiction", "compliance", "regulation", "attorney", "court"},
		},
		{
			PersonaType:    "medical_professional",
			FocusAreas:     []string{"medical", "healthcare"},
			ExpertiseLevel: types.ExpertiseAdvanced,
			CustomKeywords: []string{"medical", "health", "patient", "treatment", "diagnosis", "clinical", "medicine", "healthcare", "symptoms", "therapy"},
		},
		{
			PersonaType:    "travel_planner",
			FocusAreas:     []string{"travel", "tourism"},
			ExpertiseLevel: types.ExpertiseBeginner,
			CustomKeywords: []string{"travel", "tourism", "vacation", "destination", "hotel", "restaurant", "attraction", "culture", "cuisine", "adventure"},
		},
	}
}

// generalProfile is returned when inference cannot do better. It carries
// no terms, so ranking falls back to job-text and structural signals.
func generalProfile() types.PersonaProfile {
	return types.PersonaProfile{
		PersonaType:    GeneralPersona,
		ExpertiseLevel: types.ExpertiseIntermediate,
	}
}

// Registry holds the active profile set in declaration order.
type Registry struct {
	profiles []types.PersonaProfile
}

// NewRegistry returns a Registry with the built-in profile set.
func NewRegistry() *Registry {
	return &Registry{profiles: builtinProfiles()}
}

// LoadRegistry reads a YAML profile table from path, replacing the
// built-in set. An empty path returns the built-in registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona profiles: %w", err)
	}

	var file struct {
		Profiles []types.PersonaProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing persona profiles %s: %w", path, err)
	}
	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("persona profile file %s defines no profiles", path)
	}

	for _, p := range file.Profiles {
		if p.PersonaType == "" {
			return nil, fmt.Errorf("persona profile file %s contains a profile without persona_type", path)
		}
	}
	return &Registry{profiles: file.Profiles}, nil
}

// Profiles returns the profile set in declaration order.
func (r *Registry) Profiles() []types.PersonaProfile {
	return r.profiles
}

// Lookup returns the profile whose PersonaType equals name.
func (r *Registry) Lookup(name string) (types.PersonaProfile, bool) {
	for _, p := range r.profiles {
		if p.PersonaType == name {
			return p, true
		}
	}
	return types.PersonaProfile{}, false
}
