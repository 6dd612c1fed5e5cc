package dataset

import "time"

// inferenceThreshold is the share of non-blank values a class must exceed to win.
const inferenceThreshold = 0.8

// InferType classifies a column from all of its raw values. Blank values are
// ignored; a column without any non-blank value is STRING. Classes are checked
// in the order NUMBER, DATE, BOOLEAN and the first one above the threshold wins.
func InferType(values []any) ColumnType {
	var numCount, dateCount, boolCount, validCount int
	for _, v := range values {
		if isBlank(v) {
			continue
		}
		validCount++
		switch x := v.(type) {
		case bool:
			boolCount++
		case time.Time:
			dateCount++
		case string:
			if _, ok := parseNumber(x); ok {
				numCount++
			} else if looksLikeDate(x) {
				dateCount++
			}
		default:
			if _, ok := ToNumber(x); ok {
				numCount++
			}
		}
	}
	if validCount == 0 {
		return TypeString
	}
	total := float64(validCount)
	switch {
	case float64(numCount)/total > inferenceThreshold:
		return TypeNumber
	case float64(dateCount)/total > inferenceThreshold:
		return TypeDate
	case float64(boolCount)/total > inferenceThreshold:
		return TypeBoolean
	}
	return TypeString
}
