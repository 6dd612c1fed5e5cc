package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ColumnType is the semantic type inferred for a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeNumber
	TypeDate
	TypeBoolean
)

var typeNames = map[ColumnType]string{
	TypeString:  "STRING",
	TypeNumber:  "NUMBER",
	TypeDate:    "DATE",
	TypeBoolean: "BOOLEAN",
}

func (t ColumnType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// ParseColumnType is the inverse of String. Matching is case-insensitive.
func ParseColumnType(s string) (ColumnType, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == up {
			return t, nil
		}
	}
	return TypeString, fmt.Errorf("unknown column type %q", s)
}

func (t ColumnType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ColumnType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseColumnType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ColumnProfile is the computed schema and statistics of one column.
// Min, Max, Sum and Avg are only set for NUMBER columns with at least one finite value.
type ColumnProfile struct {
	Name          string     `json:"name"`
	Type          ColumnType `json:"type"`
	DistinctCount int        `json:"distinctCount"`
	NullCount     int        `json:"nullCount"`
	ExampleValues []any      `json:"exampleValues"`
	Min           *float64   `json:"min,omitempty"`
	Max           *float64   `json:"max,omitempty"`
	Sum           *float64   `json:"sum,omitempty"`
	Avg           *float64   `json:"avg,omitempty"`
}

// Row maps a column name to its normalized value. Every declared column has an entry.
type Row map[string]any

// Dataset is the canonical in-memory result of one ingestion. It is not mutated after Build.
type Dataset struct {
	Name      string
	Columns   []ColumnProfile
	Rows      []Row
	TotalRows int
}

// Column returns the profile with the given exact name.
func (d *Dataset) Column(name string) (*ColumnProfile, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// Table is a parsed tabular input: header names in order and raw records keyed by header.
// A record may omit headers; a missing key reads as nil.
type Table struct {
	Headers []string
	Records []map[string]any
}
