package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manuiageek/CruiseWatch-Tahiti/internal/table"
)

func sampleBundle() Bundle {
	return Bundle{
		Meta: Meta{
			SourceURL:    "https://www.portdepapeete.pf/fr/previsions-navires",
			FrameURL:     "https://example.pf/frame",
			Headers:      []string{"Navire", "Type", "Date"},
			RowCount:     2,
			TableID:      "previsions",
			TableClasses: "schedule",
			TableCaption: "Prévisions navires",
		},
		Records: []table.Record{
			{"Navire": "Aranui 5", "Type": "PAQUEBOT", "Date": "2024-01-01"},
			{"Navire": "Paul Gauguin", "Type": "PAQUEBOT", "Date": "2024-01-02"},
		},
	}
}

func TestPrint_KeyOrderFollowsHeaders(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, sampleBundle()); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := buf.String()

	// Record keys must appear in header order, not alphabetically.
	navire := strings.Index(out, `"Navire": "Aranui 5"`)
	typ := strings.Index(out, `"Type": "PAQUEBOT"`)
	date := strings.Index(out, `"Date": "2024-01-01"`)
	if navire == -1 || typ == -1 || date == -1 {
		t.Fatalf("missing record fields in output:\n%s", out)
	}
	if !(navire < typ && typ < date) {
		t.Fatalf("record keys not in header order:\n%s", out)
	}
	if !strings.Contains(out, `"meta": {`) {
		t.Fatalf("expected indented meta object:\n%s", out)
	}
}

func TestPrint_PreservesNonASCII(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, sampleBundle()); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Prévisions navires") {
		t.Fatalf("expected literal non-ASCII text:\n%s", out)
	}
	if strings.Contains(out, `\u00e9`) {
		t.Fatalf("non-ASCII characters must not be escaped:\n%s", out)
	}
}

func TestPrint_DuplicateHeaderEmittedOnce(t *testing.T) {
	b := Bundle{
		Meta: Meta{Headers: []string{"Navire", "Navire"}},
		Records: []table.Record{
			{"Navire": "second"},
		},
	}
	var buf bytes.Buffer
	if err := Print(&buf, b); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if got := strings.Count(buf.String(), `"Navire": "second"`); got != 1 {
		t.Fatalf("expected the duplicate key once, got %d occurrences:\n%s", got, buf.String())
	}
}

func TestWriteJSONAndCSV(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")
	csvPath := filepath.Join(dir, "out.csv")
	b := sampleBundle()

	if err := WriteJSON(jsonPath, b); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("reading JSON output: %v", err)
	}
	if !strings.Contains(string(data), `"source_url": "https://www.portdepapeete.pf/fr/previsions-navires"`) {
		t.Fatalf("unexpected JSON meta:\n%s", data)
	}

	if err := WriteCSV(csvPath, b); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("opening CSV output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Navire" || rows[0][2] != "Date" {
		t.Fatalf("unexpected CSV header: %v", rows[0])
	}
	if rows[1][0] != "Aranui 5" || rows[2][0] != "Paul Gauguin" {
		t.Fatalf("unexpected CSV rows: %v", rows[1:])
	}
}
