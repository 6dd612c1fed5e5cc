package dashboard

import (
	"strings"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
)

// DefaultPageSize is the number of rows shown per grid page.
const DefaultPageSize = 10

// DefaultFilterColumn is the first order-like column, else the first column.
// It returns "" for a dataset without columns.
func DefaultFilterColumn(ds *dataset.Dataset) string {
	if col, ok := Resolve(ds.Columns, Patterns[ConceptOrder]); ok {
		return col.Name
	}
	if len(ds.Columns) > 0 {
		return ds.Columns[0].Name
	}
	return ""
}

// Filter returns the rows whose cell in column contains query, ignoring case.
// Absent cells never match. An empty query or column returns every row.
func Filter(ds *dataset.Dataset, column, query string) []dataset.Row {
	if query == "" || column == "" {
		return ds.Rows
	}
	q := strings.ToLower(query)
	var out []dataset.Row
	for _, r := range ds.Rows {
		v := r[column]
		if v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(dataset.Render(v)), q) {
			out = append(out, r)
		}
	}
	return out
}

// Page is one zero-based page of grid rows.
type Page struct {
	Rows       []dataset.Row `json:"rows"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

// Paginate slices rows into pages of size (DefaultPageSize when size <= 0).
// A page past the end is empty; TotalPages is never below 1.
func Paginate(rows []dataset.Row, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	p := Page{Page: page, Size: size, Total: len(rows)}
	p.TotalPages = len(rows) / size
	if len(rows)%size != 0 {
		p.TotalPages++
	}
	if p.TotalPages == 0 {
		p.TotalPages = 1
	}
	// Checked before multiplying so a huge page cannot overflow start.
	if len(rows) == 0 || page >= p.TotalPages {
		p.Rows = []dataset.Row{}
		return p
	}
	start := page * size
	end := start + min(size, len(rows)-start)
	p.Rows = rows[start:end]
	return p
}
