// Package table ranks harvested table candidates and turns the selected one
// into header-keyed records.
package table

import (
	"sort"

	"github.com/manuiageek/CruiseWatch-Tahiti/internal/harvest"
)

// Plausible reports whether t passes the minimum shape heuristic used to
// exclude layout and decoration tables.
func Plausible(t harvest.RawTable) bool {
	return t.RowCount >= 1 && (t.ColCount >= 2 || len(t.Headers) >= 2)
}

// Select ranks candidates by (score, rowCount, colCount) descending and
// returns the best one plus the full ranked list. When no candidate is
// plausible but some exist, the whole candidate set is ranked instead, so a
// page that has tables at all never yields nothing.
func Select(candidates []harvest.RawTable) (*harvest.RawTable, []harvest.RawTable) {
	plausible := make([]harvest.RawTable, 0, len(candidates))
	for _, t := range candidates {
		if Plausible(t) {
			plausible = append(plausible, t)
		}
	}
	if len(plausible) == 0 {
		if len(candidates) == 0 {
			return nil, nil
		}
		plausible = append(plausible, candidates...)
	}

	sort.SliceStable(plausible, func(i, j int) bool {
		a, b := plausible[i], plausible[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.RowCount != b.RowCount {
			return a.RowCount > b.RowCount
		}
		return a.ColCount > b.ColCount
	})

	best := plausible[0]
	return &best, plausible
}
