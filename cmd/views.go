package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datamind-cli/internal/session"
)

var viewJSON bool

// withSnapshot runs fn on the current snapshot, failing when none is stored.
func withSnapshot(cmd *cobra.Command, fn func(s *session.Snapshot) error) error {
	env, err := openService(cmd.Context(), os.Stderr, false)
	if err != nil {
		return err
	}
	defer env.close()

	snap, ok := env.svc.Current(cmd.Context())
	if !ok {
		return errNoDataset
	}
	return fn(snap)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshot(cmd, func(s *session.Snapshot) error {
			out := cmd.OutOrStdout()
			if viewJSON {
				return writeJSON(out, summarize(s))
			}
			printHeader(out, s)
			fmt.Fprintln(out)
			printIndicators(out, s.Indicators)
			return nil
		})
	},
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Print the headline indicators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshot(cmd, func(s *session.Snapshot) error {
			if viewJSON {
				return writeJSON(cmd.OutOrStdout(), s.Indicators)
			}
			printIndicators(cmd.OutOrStdout(), s.Indicators)
			return nil
		})
	},
}

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Print the chart aggregates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshot(cmd, func(s *session.Snapshot) error {
			if viewJSON {
				return writeJSON(cmd.OutOrStdout(), summarize(s).Charts)
			}
			printCharts(cmd.OutOrStdout(), s.Charts)
			return nil
		})
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Print the inferred schema and column statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshot(cmd, func(s *session.Snapshot) error {
			if viewJSON {
				return writeJSON(cmd.OutOrStdout(), s.Dataset.Columns)
			}
			printColumns(cmd.OutOrStdout(), s.Dataset.Columns)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{showCmd, indicatorsCmd, chartsCmd, columnsCmd} {
		c.Flags().BoolVar(&viewJSON, "json", false, "print as JSON")
		rootCmd.AddCommand(c)
	}
}
