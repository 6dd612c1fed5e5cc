package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datamind-cli/internal/app"
)

var (
	rowsColumn string
	rowsQuery  string
	rowsPage   int
	rowsSize   int
	rowsJSON   bool
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Browse the data grid with an optional filter",
	Long: `Print one page of rows. --query keeps rows whose --column cell contains the text, ignoring
case. Without --column the order column (PEDIDO) or the first column is searched.
Pages are numbered from 1.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rowsPage < 1 {
			return fmt.Errorf("--page must be >= 1")
		}
		if rowsSize < 0 {
			return fmt.Errorf("--size must be >= 0")
		}
		env, err := openService(cmd.Context(), os.Stderr, false)
		if err != nil {
			return err
		}
		defer env.close()

		size := rowsSize
		if size == 0 {
			size = cfg.PageSize
		}
		res, err := env.svc.Rows(cmd.Context(), app.RowsQuery{
			Column: rowsColumn,
			Query:  rowsQuery,
			Page:   rowsPage - 1,
			Size:   size,
		})
		if errors.Is(err, app.ErrNoDataset) {
			return errNoDataset
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if rowsJSON {
			return writeJSON(out, res)
		}
		snap, _ := env.svc.Current(cmd.Context())
		printRows(out, snap.Dataset.Columns, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rowsCmd)
	rowsCmd.Flags().StringVarP(&rowsColumn, "column", "c", "", "column to filter on")
	rowsCmd.Flags().StringVarP(&rowsQuery, "query", "q", "", "text to search for")
	rowsCmd.Flags().IntVar(&rowsPage, "page", 1, "page number (1-based)")
	rowsCmd.Flags().IntVar(&rowsSize, "size", 0, "rows per page (default from config page_size)")
	rowsCmd.Flags().BoolVar(&rowsJSON, "json", false, "print as JSON")
}
