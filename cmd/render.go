package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/KaramelBytes/datamind-cli/internal/app"
	"github.com/KaramelBytes/datamind-cli/internal/dashboard"
	"github.com/KaramelBytes/datamind-cli/internal/dataset"
	"github.com/KaramelBytes/datamind-cli/internal/insight"
	"github.com/KaramelBytes/datamind-cli/internal/session"
)

var errNoDataset = fmt.Errorf("%w; run 'datamind ingest <file>' first", app.ErrNoDataset)

// snapshotSummary is the --json shape of a snapshot without its rows.
type snapshotSummary struct {
	ID         string                  `json:"id"`
	FileName   string                  `json:"fileName"`
	SavedAt    time.Time               `json:"savedAt"`
	TotalRows  int                     `json:"totalRows"`
	Columns    []dataset.ColumnProfile `json:"columns"`
	Indicators []dashboard.Indicator   `json:"indicators"`
	Charts     []dashboard.Chart       `json:"charts"`
}

func summarize(s *session.Snapshot) snapshotSummary {
	charts := s.Charts
	if charts == nil {
		charts = []dashboard.Chart{}
	}
	return snapshotSummary{
		ID:         s.ID,
		FileName:   s.FileName,
		SavedAt:    s.SavedAt,
		TotalRows:  s.Dataset.TotalRows,
		Columns:    s.Dataset.Columns,
		Indicators: s.Indicators,
		Charts:     charts,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHeader(w io.Writer, s *session.Snapshot) {
	fmt.Fprintf(w, "File:    %s\n", s.FileName)
	fmt.Fprintf(w, "Session: %s (saved %s)\n", s.ID, s.SavedAt.Local().Format("02/01/2006 15:04"))
	fmt.Fprintf(w, "Rows:    %s  Columns: %d\n", dashboard.FormatInt(s.Dataset.TotalRows), len(s.Dataset.Columns))
}

func printIndicators(w io.Writer, inds []dashboard.Indicator) {
	fmt.Fprintln(w, "Indicators:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, in := range inds {
		fmt.Fprintf(tw, "  %s\t%s\n", in.Label, in.Value)
	}
	_ = tw.Flush()
}

func printCharts(w io.Writer, charts []dashboard.Chart) {
	if len(charts) == 0 {
		fmt.Fprintln(w, "Charts: (no city column found)")
		return
	}
	for _, c := range charts {
		fmt.Fprintf(w, "%s [%s]:\n", c.Title, c.Kind)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, p := range c.Data {
			value := dashboard.FormatNumber(p.Value)
			if c.Kind == dashboard.ChartRankedBar {
				value = dashboard.FormatCompact(p.Value)
			}
			fmt.Fprintf(tw, "  %s\t%s\t\n", p.Category, value)
		}
		_ = tw.Flush()
	}
}

func printColumns(w io.Writer, cols []dataset.ColumnProfile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tDISTINCT\tNULLS\tMIN\tMAX\tAVG\tEXAMPLES")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			c.Name, c.Type, c.DistinctCount, c.NullCount,
			optNumber(c.Min), optNumber(c.Max), optNumber(c.Avg), examples(c.ExampleValues))
	}
	_ = tw.Flush()
}

func optNumber(p *float64) string {
	if p == nil {
		return "-"
	}
	return dashboard.FormatNumber(*p)
}

func examples(vals []any) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, dataset.Render(v))
	}
	return strings.Join(parts, ", ")
}

func printRows(w io.Writer, cols []dataset.ColumnProfile, res app.RowsResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	for _, r := range res.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = dashboard.FormatCell(r[c.Name])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Page %d of %d (%s matching rows, filtered on %s)\n",
		res.Page+1, res.TotalPages, dashboard.FormatInt(res.Total), res.Column)
}

func printAnalysis(w io.Writer, a insight.Analysis) {
	section := func(title string, items []string) {
		fmt.Fprintf(w, "%s:\n", title)
		if len(items) == 0 {
			fmt.Fprintln(w, "  (none)")
			return
		}
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	section("Trends", a.Trends)
	section("Anomalies", a.Anomalies)
	section("Opportunities", a.Opportunities)
	section("Recommendations", a.Recommendations)
}
