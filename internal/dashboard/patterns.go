package dashboard

import (
	"strings"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
)

// Concept is a business meaning a column name can be mapped to.
type Concept string

const (
	ConceptWeight        Concept = "weight"
	ConceptValue         Concept = "value"
	ConceptLocation      Concept = "location"
	ConceptChartCategory Concept = "chart_category"
	ConceptChartValue    Concept = "chart_value"
	ConceptOrder         Concept = "order"
)

// MatchKind selects how a Matcher compares a column name.
type MatchKind int

const (
	MatchContains MatchKind = iota
	MatchExact
)

// Matcher is one case-insensitive candidate for a concept.
type Matcher struct {
	Kind MatchKind
	Text string
}

func Exact(s string) Matcher    { return Matcher{Kind: MatchExact, Text: s} }
func Contains(s string) Matcher { return Matcher{Kind: MatchContains, Text: s} }

// Matches reports whether name satisfies the matcher.
func (m Matcher) Matches(name string) bool {
	n, t := strings.ToUpper(name), strings.ToUpper(m.Text)
	if m.Kind == MatchExact {
		return n == t
	}
	return strings.Contains(n, t)
}

// Patterns is the ranked-pattern table. For each concept the matchers are
// tried in order; the first matcher that hits any column wins, and within one
// matcher the first column in declared order is taken.
var Patterns = map[Concept][]Matcher{
	ConceptWeight:        {Contains("PESO"), Contains("WEIGHT")},
	ConceptValue:         {Exact("VALOR"), Contains("VALOR"), Contains("AMOUNT")},
	ConceptLocation:      {Contains("Cidades"), Contains("Cidade"), Contains("City")},
	ConceptChartCategory: {Contains("Cidades"), Contains("Cidade")},
	ConceptChartValue:    {Exact("VALOR"), Contains("VALOR")},
	ConceptOrder:         {Contains("PEDIDO")},
}

// Resolve returns the column selected by matchers, if any.
func Resolve(columns []dataset.ColumnProfile, matchers []Matcher) (*dataset.ColumnProfile, bool) {
	for _, m := range matchers {
		for i := range columns {
			if m.Matches(columns[i].Name) {
				return &columns[i], true
			}
		}
	}
	return nil, false
}

// Bindings holds the resolved column per concept. Unresolved concepts read as nil.
type Bindings map[Concept]*dataset.ColumnProfile

// Bind evaluates the whole pattern table once against a dataset's columns.
func Bind(ds *dataset.Dataset) Bindings {
	b := make(Bindings, len(Patterns))
	for concept, matchers := range Patterns {
		if col, ok := Resolve(ds.Columns, matchers); ok {
			b[concept] = col
		}
	}
	return b
}
