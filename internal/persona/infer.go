// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persona

import (
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Inferencer resolves the active persona for a run. It is a closed-set
// classifier over the registry's profiles; documents outside the known
// focus areas resolve to the general profile rather than failing.
type Inferencer struct {
	reg *Registry
	cfg types.PersonaConfig
}

// NewInferencer returns an Inferencer over reg.
func NewInferencer(reg *Registry, cfg types.PersonaConfig) *Inferencer {
	return &Inferencer{reg: reg, cfg: cfg}
}

// Infer selects a persona and its profile. A non-empty userHint is
// normalized and returned verbatim as the persona name, paired with the
// closest profile by exact or keyword-overlap match; without a hint the
// full profile set is scored against the concatenated section text.
func (inf *Inferencer) Infer(sections []types.Section, userHint string) (string, types.PersonaProfile) {
	if hint := NormalizeHint(userHint); hint != "" {
		return hint, inf.bindHint(hint)
	}
	return inf.classify(sections)
}

// NormalizeHint lowercases a user persona string and folds separators to
// underscores, matching the profile identifier format.
func NormalizeHint(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	fields := strings.FieldsFunc(hint, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(fields, "_")
}

// bindHint finds the profile backing a normalized hint: exact identifier
// match first, then the profile sharing the most terms with the hint's
// words, falling back to the general profile below the overlap threshold.
func (inf *Inferencer) bindHint(hint string) types.PersonaProfile {
	if p, ok := inf.reg.Lookup(hint); ok {
		return p
	}

	words := strings.Split(hint, "_")
	best := generalProfile()
	bestOverlap := 0
	for _, p := range inf.reg.Profiles() {
		overlap := 0
		for _, w := range words {
			if w == "" {
				continue
			}
			if containsTerm(p, w) || strings.Contains(p.PersonaType, w) {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best = p
			bestOverlap = overlap
		}
	}
	if bestOverlap < inf.cfg.MinHintOverlap {
		return generalProfile()
	}
	return best
}

func containsTerm(p types.PersonaProfile, word string) bool {
	for _, t := range p.Terms() {
		if strings.EqualFold(t, word) {
			return true
		}
	}
	return false
}

// classify scores every profile against the concatenated section text.
// Score is the count of term occurrences normalized by document word
// count; ties keep the earlier profile in declaration order.
func (inf *Inferencer) classify(sections []types.Section) (string, types.PersonaProfile) {
	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString(s.Title)
		sb.WriteByte(' ')
		sb.WriteString(s.BodyText)
		sb.WriteByte(' ')
	}
	text := strings.ToLower(sb.String())
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		return GeneralPersona, generalProfile()
	}

	best := generalProfile()
	bestName := GeneralPersona
	bestScore := 0.0
	for _, p := range inf.reg.Profiles() {
		hits := 0
		for _, term := range p.Terms() {
			hits += strings.Count(text, strings.ToLower(term))
		}
		score := float64(hits) / float64(wordCount)
		if score > bestScore {
			best = p
			bestName = p.PersonaType
			bestScore = score
		}
	}
	return bestName, best
}
