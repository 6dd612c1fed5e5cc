package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datamind-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		env, err := openService(ctx, os.Stderr, true)
		if err != nil {
			return err
		}
		defer env.close()

		addr := cfg.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		handler := server.NewRouter(env.svc, server.Options{
			CORSOrigins: cfg.CORSOrigins,
			PageSize:    cfg.PageSize,
		}, env.log)
		return server.Run(ctx, addr, handler, env.log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config server_addr)")
}
