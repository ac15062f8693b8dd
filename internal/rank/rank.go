// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores sections against the active persona and job
// statement and produces a deterministic importance ordering.
package rank

import (
	"sort"
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Scoring weights. Fixed constants, not learned.
const (
	keywordWeight    = 0.5
	jobWeight        = 0.3
	structuralWeight = 0.2
)

// Ranker scores and orders sections. The document list fixes the input
// order used as the first tie-break, so a Ranker is built per run.
type Ranker struct {
	cfg      types.RankingConfig
	docOrder map[string]int
}

// NewRanker returns a Ranker for a run over documents, in input order.
func NewRanker(cfg types.RankingConfig, documents []string) *Ranker {
	order := make(map[string]int, len(documents))
	for i, d := range documents {
		order[d] = i
	}
	return &Ranker{cfg: cfg, docOrder: order}
}

// Rank scores sections against profile and jobText, orders them by
// descending score with deterministic tie-breaks, assigns sequential
// importance ranks, and truncates to the configured top K. Pure-heading
// placeholder sections are excluded before scoring.
func (r *Ranker) Rank(sections []types.Section, profile types.PersonaProfile, jobText string) []types.ScoredSection {
	return r.truncate(r.RankAll(sections, profile, jobText))
}

// RankAll is Rank without the top-K truncation. Per-document results
// destined for cross-document aggregation use this form, so truncation
// happens once over the merged pool rather than per document.
func (r *Ranker) RankAll(sections []types.Section, profile types.PersonaProfile, jobText string) []types.ScoredSection {
	jobTerms := splitJobTerms(jobText)

	scored := make([]types.ScoredSection, 0, len(sections))
	for _, s := range sections {
		if s.IsPlaceholder() {
			continue
		}
		scored = append(scored, types.ScoredSection{
			Section:        s,
			RelevanceScore: r.score(s, profile, jobTerms),
		})
	}

	r.order(scored)
	assignRanks(scored)
	return scored
}

// score is the weighted sum of keyword overlap, job-term overlap, and a
// structural-position bonus.
func (r *Ranker) score(s types.Section, profile types.PersonaProfile, jobTerms []string) float64 {
	return keywordWeight*keywordScore(s, profile) +
		jobWeight*jobScore(s, jobTerms) +
		structuralWeight*structuralScore(s)
}

// keywordScore measures overlap with the profile's term set. A term
// found in the title counts double a body-only hit; the sum is
// normalized so the score stays in [0,1].
func keywordScore(s types.Section, profile types.PersonaProfile) float64 {
	terms := profile.Terms()
	if len(terms) == 0 {
		return 0
	}

	title := strings.ToLower(s.Title)
	body := strings.ToLower(s.BodyText)
	total := 0.0
	for _, term := range terms {
		t := strings.ToLower(term)
		switch {
		case strings.Contains(title, t):
			total += 2
		case strings.Contains(body, t):
			total++
		}
	}
	return total / float64(2*len(terms))
}

// jobScore is the fraction of job-statement terms present in the
// section's title or body.
func jobScore(s types.Section, jobTerms []string) float64 {
	if len(jobTerms) == 0 {
		return 0
	}

	text := strings.ToLower(s.Title + " " + s.BodyText)
	hits := 0
	for _, term := range jobTerms {
		if strings.Contains(text, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(jobTerms))
}

// structuralScore favors early sections, which tend to be summary-like,
// and level-1 headings over deeper nesting.
func structuralScore(s types.Section) float64 {
	position := 1.0 / float64(1+s.SeqIndex)

	var level float64
	switch {
	case s.Level == 1:
		level = 1.0
	case s.Level == 0:
		level = 0.6
	default:
		level = 1.0 / float64(s.Level)
	}
	return 0.5*position + 0.5*level
}

// splitJobTerms tokenizes a job-to-be-done statement, dropping words too
// short to carry signal.
func splitJobTerms(jobText string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(jobText)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > 2 {
			terms = append(terms, w)
		}
	}
	return terms
}

// order sorts by descending score; ties break by document input order,
// then page number, then original sequence position.
func (r *Ranker) order(scored []types.ScoredSection) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if oa, ob := r.docOrder[a.DocumentID], r.docOrder[b.DocumentID]; oa != ob {
			return oa < ob
		}
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		return a.SeqIndex < b.SeqIndex
	})
}

// assignRanks stamps sequential 1-based ranks over the ordered slice.
// Tied scores are already ordered deterministically, so equal scores
// still rank in a stable, reproducible order.
func assignRanks(scored []types.ScoredSection) {
	for i := range scored {
		scored[i].ImportanceRank = i + 1
	}
}

func (r *Ranker) truncate(scored []types.ScoredSection) []types.ScoredSection {
	if r.cfg.TopK > 0 && len(scored) > r.cfg.TopK {
		scored = scored[:r.cfg.TopK]
	}
	return scored
}
