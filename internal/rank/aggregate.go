// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import "github.com/pdiddy/insight-engine/pkg/types"

// Aggregate merges per-document scored sections into one pool, re-runs
// the ranking comparator across the pool, reassigns sequential ranks,
// and truncates to the top K. Scores are carried over unchanged, so the
// merged result equals ranking the full candidate set directly and is
// independent of per-document ordering.
func (r *Ranker) Aggregate(perDocument [][]types.ScoredSection) []types.ScoredSection {
	var pool []types.ScoredSection
	for _, sections := range perDocument {
		pool = append(pool, sections...)
	}

	r.order(pool)
	assignRanks(pool)
	return r.truncate(pool)
}
