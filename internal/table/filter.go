package table

import "strings"

// TypeField returns the first header whose name contains "type",
// case-insensitively. ok is false when no such header exists.
func TypeField(headers []string) (field string, ok bool) {
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), "type") {
			return h, true
		}
	}
	return "", false
}

// FilterByType retains records whose value under field, trimmed and
// upper-cased, equals the trimmed upper-cased target. An empty target
// disables filtering and the records are returned unchanged.
func FilterByType(records []Record, field, target string) []Record {
	want := strings.ToUpper(strings.TrimSpace(target))
	if want == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.ToUpper(strings.TrimSpace(r[field])) == want {
			out = append(out, r)
		}
	}
	return out
}
