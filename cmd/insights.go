package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datamind-cli/internal/app"
)

var insightsJSON bool

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Ask the configured model for trends, anomalies and recommendations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openService(cmd.Context(), os.Stderr, false)
		if err != nil {
			return err
		}
		defer env.close()

		a, err := env.svc.Insights(cmd.Context())
		if errors.Is(err, app.ErrNoDataset) {
			return errNoDataset
		}
		if err != nil {
			return err
		}
		if insightsJSON {
			return writeJSON(cmd.OutOrStdout(), a)
		}
		printAnalysis(cmd.OutOrStdout(), a)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "print as JSON")
}
