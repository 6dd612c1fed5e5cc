package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		typ  ColumnType
		raw  any
		want any
	}{
		{"number from string", TypeNumber, "12.5", 12.5},
		{"number null is zero", TypeNumber, nil, 0.0},
		{"number unparseable is zero", TypeNumber, "abc", 0.0},
		{"number native", TypeNumber, 7.0, 7.0},
		{"number from int", TypeNumber, 3, 3.0},
		{"string null is empty", TypeString, nil, ""},
		{"string from number", TypeString, 1500.0, "1500"},
		{"string from bool", TypeString, true, "true"},
		{"string verbatim", TypeString, " SP ", " SP "},
		{"date verbatim", TypeDate, day, day},
		{"date parsed", TypeDate, "2024-01-15", day},
		{"date day first", TypeDate, "15/01/2024", day},
		{"date unparseable", TypeDate, "not a date", nil},
		{"date empty", TypeDate, "", nil},
		{"date null", TypeDate, nil, nil},
		{"bool native", TypeBoolean, false, false},
		{"bool word", TypeBoolean, " TRUE ", true},
		{"bool word false", TypeBoolean, "false", false},
		{"bool other", TypeBoolean, "yes", nil},
		{"bool null", TypeBoolean, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeValue(tt.typ, tt.raw))
		})
	}
}

func TestNormalizeRow_MissingKeysGetTypeDefaults(t *testing.T) {
	t.Parallel()

	cols := []ColumnProfile{
		{Name: "VALOR", Type: TypeNumber},
		{Name: "Cidade", Type: TypeString},
		{Name: "Data", Type: TypeDate},
		{Name: "Ativo", Type: TypeBoolean},
	}
	row := NormalizeRow(map[string]any{"extra": "ignored"}, cols)

	assert.Len(t, row, 4)
	assert.Equal(t, 0.0, row["VALOR"])
	assert.Equal(t, "", row["Cidade"])
	assert.Nil(t, row["Data"])
	assert.Nil(t, row["Ativo"])
	assert.NotContains(t, row, "extra")
}

func TestNormalizeRow_Idempotent(t *testing.T) {
	t.Parallel()

	cols := []ColumnProfile{
		{Name: "VALOR", Type: TypeNumber},
		{Name: "Cidade", Type: TypeString},
		{Name: "Data", Type: TypeDate},
		{Name: "Ativo", Type: TypeBoolean},
	}
	raw := map[string]any{"VALOR": "oops", "Cidade": nil, "Data": "2024-03-01T10:00:00Z", "Ativo": "true"}

	once := NormalizeRow(raw, cols)
	twice := NormalizeRow(once, cols)
	assert.Equal(t, once, twice)
}
