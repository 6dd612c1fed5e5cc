package insight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
)

const sampleRows = 10

type ColumnSummary struct {
	Name      string             `json:"name"`
	Type      dataset.ColumnType `json:"type"`
	Min       *float64           `json:"min,omitempty"`
	Max       *float64           `json:"max,omitempty"`
	Avg       *float64           `json:"avg,omitempty"`
	NullCount int                `json:"nullCount"`
}

// Summary is the compact view of a dataset sent to the model instead of
// the full rows.
type Summary struct {
	TotalRows  int             `json:"totalRows"`
	Columns    []ColumnSummary `json:"columns"`
	SampleData []SampleRow     `json:"sampleData"`
}

// SampleRow is one dataset row whose JSON object keeps the dataset's column
// order instead of the alphabetical order of a marshalled map.
type SampleRow struct {
	Columns []string
	Values  dataset.Row
}

func (r SampleRow) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, name := range r.Columns {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[name])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func Summarize(ds *dataset.Dataset) Summary {
	s := Summary{TotalRows: ds.TotalRows, Columns: make([]ColumnSummary, len(ds.Columns))}
	names := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		names[i] = c.Name
		s.Columns[i] = ColumnSummary{Name: c.Name, Type: c.Type, Min: c.Min, Max: c.Max, Avg: c.Avg, NullCount: c.NullCount}
	}
	n := min(len(ds.Rows), sampleRows)
	s.SampleData = make([]SampleRow, n)
	for i, row := range ds.Rows[:n] {
		s.SampleData[i] = SampleRow{Columns: names, Values: row}
	}
	return s
}

// BuildPrompt renders the analyst instruction around the summary JSON.
func BuildPrompt(s Summary) (string, error) {
	js, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	var b strings.Builder
	b.WriteString("You are a Senior Data Analyst. Analyze the following dataset summary (JSON).\n\n")
	b.WriteString("Dataset Summary:\n")
	b.Write(js)
	b.WriteString("\n\nProvide a structured analysis with the following 4 sections.\n")
	b.WriteString("Be specific, professional, and strategic.\n\n")
	b.WriteString("1. Trends Identified (3 bullet points)\n")
	b.WriteString("2. Anomalies / Outliers (2 bullet points)\n")
	b.WriteString("3. Opportunities for Improvement (2 bullet points)\n")
	b.WriteString("4. Strategic Recommendations (2 bullet points)\n\n")
	b.WriteString(`Return the response as a valid JSON object with keys: "trends", "anomalies", "opportunities", "recommendations". Each value should be an array of strings.`)
	b.WriteString("\nDo not use Markdown formatting in the response, just raw JSON.\n")
	return b.String(), nil
}
