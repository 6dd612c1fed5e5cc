package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openService(cmd.Context(), os.Stderr, false)
		if err != nil {
			return err
		}
		defer env.close()

		env.svc.Reset(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Session cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
