package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Load a spreadsheet or CSV and build its dashboard",
	Long: `Load an .xlsx, .csv, .tsv, .txt or .html table export. Column types are inferred,
cells normalized, and indicators and charts computed. The result replaces the current
session; a failed load keeps the previous one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openService(cmd.Context(), os.Stderr, false)
		if err != nil {
			return err
		}
		defer env.close()

		snap, err := env.svc.Ingest(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if ingestJSON {
			return writeJSON(out, summarize(snap))
		}
		fmt.Fprintf(out, "✓ Ingested %s: %d rows, %d columns\n", snap.FileName, snap.Dataset.TotalRows, len(snap.Dataset.Columns))
		fmt.Fprintln(out)
		printColumns(out, snap.Dataset.Columns)
		fmt.Fprintln(out)
		printIndicators(out, snap.Indicators)
		fmt.Fprintln(out)
		printCharts(out, snap.Charts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "print the result as JSON")
}
