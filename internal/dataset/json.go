package dataset

import (
	"encoding/json"
	"fmt"
)

// wireDataset keeps rows as arrays aligned with the column order.
type wireDataset struct {
	Name      string          `json:"name"`
	Columns   []ColumnProfile `json:"columns"`
	Rows      [][]any         `json:"rows"`
	TotalRows int             `json:"totalRows"`
}

func (d Dataset) MarshalJSON() ([]byte, error) {
	w := wireDataset{
		Name:      d.Name,
		Columns:   d.Columns,
		Rows:      make([][]any, len(d.Rows)),
		TotalRows: d.TotalRows,
	}
	if w.Columns == nil {
		w.Columns = []ColumnProfile{}
	}
	for i, row := range d.Rows {
		cells := make([]any, len(d.Columns))
		for j, c := range d.Columns {
			cells[j] = row[c.Name]
		}
		w.Rows[i] = cells
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores typed row values by normalizing each decoded row
// through its column profiles again.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	var w wireDataset
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	rows := make([]Row, len(w.Rows))
	for i, cells := range w.Rows {
		if len(cells) != len(w.Columns) {
			return fmt.Errorf("row %d: %d cells for %d columns", i, len(cells), len(w.Columns))
		}
		rec := make(map[string]any, len(cells))
		for j, c := range w.Columns {
			rec[c.Name] = cells[j]
		}
		rows[i] = NormalizeRow(rec, w.Columns)
	}
	*d = Dataset{
		Name:      w.Name,
		Columns:   w.Columns,
		Rows:      rows,
		TotalRows: len(rows),
	}
	return nil
}
