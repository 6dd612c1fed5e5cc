package dashboard

import "github.com/KaramelBytes/datamind-cli/internal/dataset"

// Color is the display tag of an indicator.
type Color string

const (
	ColorGreen Color = "green"
	ColorBlue  Color = "blue"
	ColorGray  Color = "gray"
	ColorRed   Color = "red"
)

const placeholderValue = "-"

// Indicator labels.
const (
	LabelTotalRecords   = "Total de Registros"
	LabelTotalWeight    = "Peso Total"
	LabelTotalValue     = "Valor Total"
	LabelUniqueCities   = "Número de Cidades Únicas"
	LabelCitiesFallback = "Cidades Únicas"
)

// Indicator is a headline metric with its value already formatted for display.
type Indicator struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color Color  `json:"color"`
}

// Indicators returns exactly four indicators in fixed order: record count,
// total weight, total value and unique locations. A concept without a
// matching column yields a gray placeholder instead of being dropped.
func Indicators(ds *dataset.Dataset) []Indicator {
	b := Bind(ds)
	out := make([]Indicator, 0, 4)

	out = append(out, Indicator{Label: LabelTotalRecords, Value: FormatInt(ds.TotalRows), Color: ColorBlue})

	if col := b[ConceptWeight]; col != nil && col.Sum != nil {
		out = append(out, Indicator{Label: LabelTotalWeight, Value: FormatNumber(*col.Sum), Color: ColorGreen})
	} else {
		out = append(out, Indicator{Label: LabelTotalWeight, Value: placeholderValue, Color: ColorGray})
	}

	if col := b[ConceptValue]; col != nil && col.Sum != nil {
		out = append(out, Indicator{Label: LabelTotalValue, Value: FormatCurrency(*col.Sum), Color: ColorBlue})
	} else {
		out = append(out, Indicator{Label: LabelTotalValue, Value: placeholderValue, Color: ColorGray})
	}

	if col := b[ConceptLocation]; col != nil {
		out = append(out, Indicator{Label: LabelUniqueCities, Value: FormatInt(col.DistinctCount), Color: ColorGray})
	} else {
		out = append(out, Indicator{Label: LabelCitiesFallback, Value: placeholderValue, Color: ColorGray})
	}
	return out
}
