package dataset

import "math"

const maxExampleValues = 5

// ProfileColumn computes the profile of one column from its raw values.
// Null and empty values share one distinct bucket and both count as nulls.
// Numeric aggregates are computed over values that coerce to finite numbers only.
// Avg is clamped into [Min, Max]; Sum is left unset when it overflows.
func ProfileColumn(name string, typ ColumnType, values []any) ColumnProfile {
	p := ColumnProfile{Name: name, Type: typ}

	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[Render(v)] = struct{}{}
		if isBlank(v) {
			p.NullCount++
		}
	}
	p.DistinctCount = len(distinct)

	n := min(len(values), maxExampleValues)
	p.ExampleValues = make([]any, n)
	copy(p.ExampleValues, values[:n])

	if typ != TypeNumber {
		return p
	}
	var count int
	var lo, hi, sum, mean float64
	for _, v := range values {
		if isBlank(v) {
			continue
		}
		x, ok := ToNumber(v)
		if !ok {
			continue
		}
		if count == 0 || x < lo {
			lo = x
		}
		if count == 0 || x > hi {
			hi = x
		}
		sum += x
		count++
		// Running mean stays finite when the plain sum overflows.
		mean += x/float64(count) - mean/float64(count)
	}
	if count == 0 {
		return p
	}
	avg := math.Min(math.Max(mean, lo), hi)
	p.Min, p.Max, p.Avg = &lo, &hi, &avg
	if !math.IsInf(sum, 0) {
		p.Sum = &sum
	}
	return p
}
