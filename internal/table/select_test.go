package table

import (
	"testing"

	"github.com/manuiageek/CruiseWatch-Tahiti/internal/harvest"
)

func TestSelect_RanksByScoreThenDimensions(t *testing.T) {
	candidates := []harvest.RawTable{
		{ID: "small", RowCount: 2, ColCount: 3, Score: 6},
		{ID: "big", RowCount: 10, ColCount: 5, Score: 55},
		{ID: "mid", RowCount: 5, ColCount: 4, Score: 20},
	}

	best, ranked := Select(candidates)
	if best == nil {
		t.Fatal("expected a selected table")
	}
	if best.ID != "big" {
		t.Fatalf("expected 'big' to win, got %q", best.ID)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked candidates, got %d", len(ranked))
	}
	if ranked[0].ID != "big" || ranked[1].ID != "mid" || ranked[2].ID != "small" {
		t.Fatalf("unexpected ranking order: %q, %q, %q", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
}

func TestSelect_TieBrokenByRowThenColCount(t *testing.T) {
	candidates := []harvest.RawTable{
		{ID: "fewer-rows", RowCount: 3, ColCount: 9, Score: 27},
		{ID: "more-rows", RowCount: 9, ColCount: 3, Score: 27},
	}

	best, _ := Select(candidates)
	if best.ID != "more-rows" {
		t.Fatalf("expected row count to break the tie, got %q", best.ID)
	}

	candidates = []harvest.RawTable{
		{ID: "narrow", RowCount: 4, ColCount: 2, Score: 8},
		{ID: "wide", RowCount: 4, ColCount: 6, Score: 8},
	}
	best, _ = Select(candidates)
	if best.ID != "wide" {
		t.Fatalf("expected col count to break the tie, got %q", best.ID)
	}
}

func TestSelect_PlausibilityFilter(t *testing.T) {
	candidates := []harvest.RawTable{
		// Layout table: one row, one column, no headers. High score anyway.
		{ID: "layout", RowCount: 1, ColCount: 1, Score: 100},
		{ID: "data", RowCount: 3, ColCount: 4, Score: 12},
	}

	best, ranked := Select(candidates)
	if best.ID != "data" {
		t.Fatalf("expected implausible table to be excluded, got %q", best.ID)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected 1 plausible candidate, got %d", len(ranked))
	}
}

func TestSelect_HeadersSatisfyPlausibility(t *testing.T) {
	// colCount < 2 but two headers qualifies.
	candidates := []harvest.RawTable{
		{ID: "headed", RowCount: 1, ColCount: 1, Headers: []string{"Navire", "Type"}, Score: 6},
	}
	best, _ := Select(candidates)
	if best == nil || best.ID != "headed" {
		t.Fatal("expected table with two headers to be plausible")
	}
}

func TestSelect_FallsBackWhenNothingPlausible(t *testing.T) {
	candidates := []harvest.RawTable{
		{ID: "a", RowCount: 1, ColCount: 1, Score: 1},
		{ID: "b", RowCount: 1, ColCount: 1, Score: 3},
	}

	best, ranked := Select(candidates)
	if best == nil {
		t.Fatal("expected fallback to the full candidate set")
	}
	if best.ID != "b" {
		t.Fatalf("expected highest score among fallback candidates, got %q", best.ID)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected both candidates ranked, got %d", len(ranked))
	}
}

func TestSelect_NoCandidates(t *testing.T) {
	best, ranked := Select(nil)
	if best != nil {
		t.Fatalf("expected no selection, got %q", best.ID)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty ranked list, got %d entries", len(ranked))
	}
}
