package dataset

import (
	"strings"
	"time"
)

// NormalizeValue converts one raw cell to the representation of typ.
// A cell that cannot be converted degrades to the type's default:
// 0 for NUMBER, "" for STRING and nil for DATE and BOOLEAN.
func NormalizeValue(typ ColumnType, raw any) any {
	switch typ {
	case TypeNumber:
		if raw == nil {
			return float64(0)
		}
		if f, ok := ToNumber(raw); ok {
			return f
		}
		return float64(0)
	case TypeDate:
		switch x := raw.(type) {
		case time.Time:
			return x
		case string:
			if t, ok := ParseDate(x); ok {
				return t
			}
		}
		return nil
	case TypeBoolean:
		switch x := raw.(type) {
		case bool:
			return x
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "true":
				return true
			case "false":
				return false
			}
		}
		return nil
	default:
		return Render(raw)
	}
}

// NormalizeRow produces one entry per column, in the type decided by its profile.
// Keys missing from record normalize as nil. Normalizing an already normalized
// row returns the same values.
func NormalizeRow(record map[string]any, columns []ColumnProfile) Row {
	row := make(Row, len(columns))
	for _, c := range columns {
		row[c.Name] = NormalizeValue(c.Type, record[c.Name])
	}
	return row
}
