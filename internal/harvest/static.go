package harvest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseDocument harvests table candidates from an HTML document string. It
// mirrors the in-browser collection script, except cell text comes from the
// markup instead of the rendered layout. Used as fallback when a frame cannot
// be evaluated, and for harvesting fixtures without a browser.
func ParseDocument(html, frameURL string) []RawTable {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []RawTable
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		t := RawTable{
			Caption:  cellText(tbl.Find("caption").First().Text()),
			ID:       tbl.AttrOr("id", ""),
			Classes:  tbl.AttrOr("class", ""),
			FrameURL: frameURL,
		}

		var headerRow *goquery.Selection
		headerRows := tbl.Find("thead tr")
		if headerRows.Length() > 0 {
			headerRow = headerRows.Last()
		} else {
			th := tbl.Find("tr th").First()
			if th.Length() > 0 {
				headerRow = th.Parent()
			}
		}
		if headerRow != nil {
			t.Headers = rowCells(headerRow)
		}

		bodyRows := tbl.Find("tbody tr")
		if bodyRows.Length() == 0 {
			bodyRows = tbl.Find("tr")
		}
		// The HTML5 parser synthesizes <tbody> around bare rows, so the
		// header row can sit among the body rows. Exclude it by identity.
		bodyRows.Each(func(_ int, tr *goquery.Selection) {
			if headerRow != nil && tr.IsSelection(headerRow) {
				return
			}
			appendRow(&t, tr)
		})

		t.RowCount = len(t.Rows)
		if len(t.Rows) > 0 {
			t.ColCount = len(t.Rows[0])
		} else {
			t.ColCount = len(t.Headers)
		}
		t.Score = score(t.RowCount, t.ColCount, len(t.Headers))
		out = append(out, t)
	})
	return out
}

// appendRow adds tr's cells to the table, dropping rows with zero cells.
func appendRow(t *RawTable, tr *goquery.Selection) {
	cells := rowCells(tr)
	if len(cells) > 0 {
		t.Rows = append(t.Rows, cells)
	}
}

// rowCells returns the trimmed, whitespace-collapsed text of tr's direct cells.
func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cellText(cell.Text()))
	})
	return cells
}

func cellText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// score favors large tables and the presence of a header row.
func score(rowCount, colCount, headerCount int) float64 {
	cols := colCount
	if cols < 1 {
		cols = 1
	}
	s := float64(rowCount * cols)
	if headerCount > 0 {
		s += 5
	}
	return s
}
