package table

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/manuiageek/CruiseWatch-Tahiti/internal/harvest"
)

// Record maps a header name to the cell value of one table row. Keys follow
// the filtered header list; when filtering leaves duplicate header names, the
// last column wins.
type Record map[string]string

// DefaultIgnoredHeaders lists header names always excluded from output.
// Comparison is case, whitespace, degree-sign and diacritic insensitive.
var DefaultIgnoredHeaders = []string{
	"N° Escale",
	"N° Voyage",
	"agent",
	"acconier",
}

// stripMarks removes combining diacritical marks ("é" → "e").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader lowercases, collapses whitespace and strips degree signs
// and diacritics, so header comparison survives the page's formatting quirks.
func NormalizeHeader(name string) string {
	s := strings.ToLower(strings.Join(strings.Fields(name), " "))
	s = strings.NewReplacer("°", "", "º", "").Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	return strings.TrimSpace(s)
}

func ignoredHeader(name string, ignoreList []string) bool {
	n := NormalizeHeader(name)
	for _, h := range ignoreList {
		if NormalizeHeader(h) == n {
			return true
		}
	}
	return false
}

// Normalize converts the selected raw table into filtered headers and
// header-keyed records:
//
//   - when the table carries no headers, positional names col_1..col_N are
//     synthesized, N being the longest row length;
//   - headers matching the ignore-list are dropped, and the same column
//     indexes are dropped from every row;
//   - each row is first reconciled against the original (pre-filter) header
//     count: short rows are right-padded with empty strings, overflow cells
//     are folded into the last cell joined by " | ".
func Normalize(t harvest.RawTable, ignoreList []string) ([]string, []Record) {
	headers := t.Headers
	if len(headers) == 0 {
		maxCols := 0
		for _, r := range t.Rows {
			if len(r) > maxCols {
				maxCols = len(r)
			}
		}
		headers = make([]string, maxCols)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i+1)
		}
	}

	origLen := len(headers)
	keep := make([]int, 0, origLen)
	for i, h := range headers {
		if !ignoredHeader(h, ignoreList) {
			keep = append(keep, i)
		}
	}
	filtered := make([]string, len(keep))
	for i, idx := range keep {
		filtered[i] = headers[idx]
	}

	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		row = Reconcile(row, origLen)
		rec := make(Record, len(keep))
		for i, idx := range keep {
			rec[filtered[i]] = row[idx]
		}
		records = append(records, rec)
	}
	return filtered, records
}

// Reconcile aligns a row with the original header count: short rows are
// right-padded with empty strings, overflow cells are joined by " | " into
// the final cell. Correctly sized rows pass through untouched.
func Reconcile(row []string, headerLen int) []string {
	switch {
	case len(row) < headerLen:
		out := make([]string, headerLen)
		copy(out, row)
		return out
	case len(row) > headerLen && headerLen > 0:
		out := make([]string, headerLen)
		copy(out, row[:headerLen-1])
		out[headerLen-1] = strings.Join(row[headerLen-1:], " | ")
		return out
	default:
		return row
	}
}
