package dashboard

import (
	"sort"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
)

// ChartKind identifies the visualization a chart spec is shaped for.
type ChartKind string

const (
	ChartRankedBar    ChartKind = "bar"
	ChartDistribution ChartKind = "pie"
)

const (
	maxChartEntries   = 10
	undefinedCategory = "Indefinido"

	TitleRankedBar    = "Top 10 Cidades por VALOR"
	TitleDistribution = "Distribuição de Cidades"
)

// Point is one category of an aggregate.
type Point struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Chart is an aggregate sorted descending by value and capped at 10 entries.
type Chart struct {
	Kind  ChartKind `json:"kind"`
	Title string    `json:"title"`
	Data  []Point   `json:"data"`
}

// Charts plans the ranked bar (sum of value per location) and the location
// distribution (row count per location). A chart whose columns cannot be
// found is omitted.
func Charts(ds *dataset.Dataset) []Chart {
	b := Bind(ds)
	cat := b[ConceptChartCategory]
	if cat == nil {
		return nil
	}
	var charts []Chart
	if val := b[ConceptChartValue]; val != nil {
		data := aggregate(ds.Rows, cat.Name, func(r dataset.Row) float64 {
			f, _ := dataset.ToNumber(r[val.Name])
			return f
		})
		charts = append(charts, Chart{Kind: ChartRankedBar, Title: TitleRankedBar, Data: data})
	}
	data := aggregate(ds.Rows, cat.Name, func(dataset.Row) float64 { return 1 })
	charts = append(charts, Chart{Kind: ChartDistribution, Title: TitleDistribution, Data: data})
	return charts
}

// aggregate groups rows by the rendered category, keeping first-encounter
// order so the stable sort breaks ties by it.
func aggregate(rows []dataset.Row, column string, measure func(dataset.Row) float64) []Point {
	index := map[string]int{}
	var points []Point
	for _, r := range rows {
		key := dataset.Render(r[column])
		if key == "" {
			key = undefinedCategory
		}
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, Point{Category: key})
		}
		points[i].Value += measure(r)
	}
	sort.SliceStable(points, func(a, b int) bool { return points[a].Value > points[b].Value })
	if len(points) > maxChartEntries {
		points = points[:maxChartEntries]
	}
	return points
}
