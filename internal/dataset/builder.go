package dataset

import "sort"

type buildPhase int

const (
	phaseCollecting buildPhase = iota
	phaseProfiled
	phaseNormalized
)

// Builder assembles a Dataset in two strict phases: every column is typed and
// profiled first, then every record is normalized against that fixed schema.
type Builder struct {
	name    string
	headers []string
	records []map[string]any
	columns []ColumnProfile
	rows    []Row
	phase   buildPhase
}

// NewBuilder returns a builder for a source named name with the given ordered headers.
func NewBuilder(name string, headers []string) *Builder {
	h := make([]string, len(headers))
	copy(h, headers)
	return &Builder{name: name, headers: h}
}

// Add appends one raw record. It fails once profiling has started.
func (b *Builder) Add(record map[string]any) error {
	if b.phase != phaseCollecting {
		return ErrSealed
	}
	b.records = append(b.records, record)
	return nil
}

// Profile runs type inference and profiling for every header, in header order.
func (b *Builder) Profile() error {
	if b.phase != phaseCollecting {
		return nil
	}
	if len(b.records) == 0 {
		return &NoDataError{Source: b.name}
	}
	if len(b.headers) == 0 {
		b.headers = recordKeys(b.records[0])
	}
	b.columns = make([]ColumnProfile, 0, len(b.headers))
	values := make([]any, len(b.records))
	for _, h := range b.headers {
		for i, rec := range b.records {
			values[i] = rec[h]
		}
		b.columns = append(b.columns, ProfileColumn(h, InferType(values), values))
	}
	b.phase = phaseProfiled
	return nil
}

// Columns returns the profiles decided so far; nil before Profile.
func (b *Builder) Columns() []ColumnProfile { return b.columns }

// Normalize rewrites every record against the completed profiles.
func (b *Builder) Normalize() error {
	switch b.phase {
	case phaseCollecting:
		return ErrNotProfiled
	case phaseNormalized:
		return nil
	}
	b.rows = make([]Row, len(b.records))
	for i, rec := range b.records {
		b.rows[i] = NormalizeRow(rec, b.columns)
	}
	b.phase = phaseNormalized
	return nil
}

// Build runs the remaining phases and returns the dataset.
func (b *Builder) Build() (*Dataset, error) {
	if err := b.Profile(); err != nil {
		return nil, err
	}
	if err := b.Normalize(); err != nil {
		return nil, err
	}
	return &Dataset{
		Name:      b.name,
		Columns:   b.columns,
		Rows:      b.rows,
		TotalRows: len(b.rows),
	}, nil
}

// Build is a one-shot helper over a parsed table.
func Build(name string, t *Table) (*Dataset, error) {
	if t == nil {
		return nil, &NoDataError{Source: name}
	}
	b := NewBuilder(name, t.Headers)
	for _, rec := range t.Records {
		if err := b.Add(rec); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// recordKeys falls back to the sorted keys of a record when no header order is known.
func recordKeys(rec map[string]any) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
