package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
)

// WriteJSON writes the bundle to path as UTF-8 JSON with 2-space indentation.
// Non-ASCII characters are preserved literally.
func WriteJSON(path string, b Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Print(f, b)
}

// Print writes the indented JSON form of the bundle to w.
func Print(w io.Writer, b Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// WriteCSV writes the bundle to path: filtered headers as the first row, one
// data row per record, default escaping rules.
func WriteCSV(path string, b Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(b.Meta.Headers); err != nil {
		return err
	}
	for _, rec := range b.Records {
		row := make([]string, len(b.Meta.Headers))
		for i, h := range b.Meta.Headers {
			row[i] = rec[h]
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
