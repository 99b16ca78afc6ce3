// Package export serializes the extracted schedule as JSON or CSV.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/manuiageek/CruiseWatch-Tahiti/internal/table"
)

// Meta describes the provenance of an extracted schedule.
type Meta struct {
	SourceURL    string   `json:"source_url"`
	FrameURL     string   `json:"frame_url"`
	Headers      []string `json:"headers"`
	RowCount     int      `json:"row_count"`
	TableID      string   `json:"table_id"`
	TableClasses string   `json:"table_classes"`
	TableCaption string   `json:"table_caption"`
}

// Bundle is the terminal artifact of one run: provenance plus the retained
// records, in table order.
type Bundle struct {
	Meta    Meta
	Records []table.Record
}

// MarshalJSON emits {"meta": ..., "records": [...]} with each record's keys
// in filtered-header order. encoding/json would sort map keys alphabetically,
// which loses the table's column order.
func (b Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"meta":`)
	meta, err := marshalNoEscape(b.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}
	buf.Write(meta)
	buf.WriteString(`,"records":[`)
	for i, rec := range b.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeRecord(&buf, b.Meta.Headers, rec); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

// writeRecord emits one record object, keys ordered by headers. A duplicate
// header name is emitted once, carrying the surviving (last-column) value.
func writeRecord(buf *bytes.Buffer, headers []string, rec table.Record) error {
	buf.WriteByte('{')
	seen := make(map[string]bool, len(headers))
	first := true
	for _, h := range headers {
		if seen[h] {
			continue
		}
		seen[h] = true
		v, ok := rec[h]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := marshalNoEscape(h)
		if err != nil {
			return fmt.Errorf("marshal record key: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(v)
		if err != nil {
			return fmt.Errorf("marshal record value: %w", err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}

// marshalNoEscape marshals v without HTML escaping, so non-ASCII and markup
// characters stay literal in the output.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
