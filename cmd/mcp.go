package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datamind-cli/internal/mcpserver"
	"github.com/KaramelBytes/datamind-cli/internal/telemetry"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the dataset tools over MCP (stdio)",
	Long: `Run an MCP server on stdin/stdout so assistants can load files, read indicators and
charts, filter rows and request insights. Logs go to stderr as JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		// stdout is reserved for the MCP stdio transport.
		env, err := openService(ctx, os.Stderr, true)
		if err != nil {
			return err
		}
		defer env.close()

		var inst *telemetry.Instruments
		if cfg.OTelEnabled {
			inst = telemetry.NewInstruments()
		}
		s := mcpserver.NewServer(Version, env.svc, env.log, telemetry.Tracer(cfg.OTelEnabled), inst)

		env.log.Info("serving MCP over stdio", "version", Version)
		if err := mcpsrv.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout); err != nil {
			return fmt.Errorf("stdio server: %w", err)
		}
		env.log.Info("shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
