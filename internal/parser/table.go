package parser

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
)

const emptyHeader = "__EMPTY"

// uniqueHeaders trims header cells, names blank ones __EMPTY, __EMPTY_1, ...
// and suffixes repeated names with _1, _2, ...
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	next := make(map[string]int, len(raw))
	for i, h := range raw {
		base := strings.TrimSpace(h)
		if base == "" {
			base = emptyHeader
		}
		name := base
		for taken[name] {
			next[base]++
			name = fmt.Sprintf("%s_%d", base, next[base])
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// newTable keys each row by header. Cells past the header width are dropped,
// missing cells and empty strings become nil, and rows with no value are skipped.
func newTable(header []string, rows [][]any) *dataset.Table {
	t := &dataset.Table{Headers: uniqueHeaders(header)}
	for _, cells := range rows {
		rec := make(map[string]any, len(t.Headers))
		hasValue := false
		for j, h := range t.Headers {
			var v any
			if j < len(cells) {
				v = cells[j]
			}
			if s, ok := v.(string); ok && s == "" {
				v = nil
			}
			if v != nil {
				hasValue = true
			}
			rec[h] = v
		}
		if hasValue {
			t.Records = append(t.Records, rec)
		}
	}
	return t
}

// stringCells widens a row of strings for newTable.
func stringCells(rec []string) []any {
	out := make([]any, len(rec))
	for i, s := range rec {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
