// Package mcpserver exposes the ingestion service as MCP tools.
package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"

	"github.com/KaramelBytes/datamind-cli/internal/app"
	"github.com/KaramelBytes/datamind-cli/internal/telemetry"
)

const serverName = "datamind"

// NewServer creates an MCPServer with the dataset tools and logging hooks.
// tracer and inst may be nil.
func NewServer(version string, svc *app.Service, logger *slog.Logger, tracer trace.Tracer, inst *telemetry.Instruments) *server.MCPServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
	)

	RegisterTools(s, svc)

	return s
}
