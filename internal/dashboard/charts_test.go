package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharts_RankedBarSumsByCity(t *testing.T) {
	t.Parallel()

	ds := build(t, []string{"Cidade", "VALOR"},
		map[string]any{"Cidade": "SP", "VALOR": "100"},
		map[string]any{"Cidade": "SP", "VALOR": "50"},
		map[string]any{"Cidade": "RJ", "VALOR": "200"},
	)

	charts := Charts(ds)
	require.Len(t, charts, 2)
	assert.Equal(t, ChartRankedBar, charts[0].Kind)
	assert.Equal(t, TitleRankedBar, charts[0].Title)
	assert.Equal(t, []Point{{"RJ", 200}, {"SP", 150}}, charts[0].Data)

	assert.Equal(t, ChartDistribution, charts[1].Kind)
	assert.Equal(t, TitleDistribution, charts[1].Title)
	assert.Equal(t, []Point{{"SP", 2}, {"RJ", 1}}, charts[1].Data)
}

func TestCharts_MissingValueContributesZero(t *testing.T) {
	t.Parallel()

	ds := build(t, []string{"Cidade", "VALOR"},
		map[string]any{"Cidade": "SP", "VALOR": "10"},
		map[string]any{"Cidade": "RJ"},
		map[string]any{"Cidade": nil, "VALOR": "5"},
	)

	bar := Charts(ds)[0]
	assert.Equal(t, []Point{{"SP", 10}, {"Indefinido", 5}, {"RJ", 0}}, bar.Data)
}

func TestCharts_DistributionOnlyWithoutValueColumn(t *testing.T) {
	t.Parallel()

	ds := build(t, []string{"Cidades"},
		map[string]any{"Cidades": "Recife"},
		map[string]any{"Cidades": ""},
	)

	charts := Charts(ds)
	require.Len(t, charts, 1)
	assert.Equal(t, ChartDistribution, charts[0].Kind)
	// Ties keep first-encounter order.
	assert.Equal(t, []Point{{"Recife", 1}, {"Indefinido", 1}}, charts[0].Data)
}

func TestCharts_NoCategoryColumn(t *testing.T) {
	t.Parallel()

	ds := build(t, []string{"City", "VALOR"}, map[string]any{"City": "NYC", "VALOR": "1"})
	assert.Empty(t, Charts(ds))
}

func TestCharts_CappedAndSortedDescending(t *testing.T) {
	t.Parallel()

	var records []map[string]any
	for i := 0; i < 15; i++ {
		records = append(records, map[string]any{"Cidade": fmt.Sprintf("C%02d", i), "VALOR": fmt.Sprint(i)})
	}
	ds := build(t, []string{"Cidade", "VALOR"}, records...)

	for _, c := range Charts(ds) {
		assert.LessOrEqual(t, len(c.Data), 10)
		for i := 1; i < len(c.Data); i++ {
			assert.GreaterOrEqual(t, c.Data[i-1].Value, c.Data[i].Value)
		}
	}
	bar := Charts(ds)[0]
	assert.Equal(t, "C14", bar.Data[0].Category)
	assert.Equal(t, "C05", bar.Data[9].Category)
}
