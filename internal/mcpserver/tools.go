package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/KaramelBytes/datamind-cli/internal/app"
	"github.com/KaramelBytes/datamind-cli/internal/session"
)

const (
	descIngestFile = "Load a spreadsheet or delimited text file (.xlsx, .csv, .tsv, .txt, .html) from the local " +
		"filesystem. Column types are inferred, every cell is normalized, and headline indicators and chart " +
		"aggregates are computed. The result replaces the current dataset; a failed load keeps the previous one."

	descGetIndicators = "Return the four headline indicators of the current dataset: record count, total weight, " +
		"total value (BRL) and number of unique cities. Values are already formatted in pt-BR; a '-' means the " +
		"matching column was not found."

	descGetCharts = "Return the chart aggregates of the current dataset: value summed per city (top 10) and the " +
		"row distribution per city. Charts whose columns cannot be found are omitted."

	descDescribeColumns = "Describe every column of the current dataset: inferred type (STRING, NUMBER, DATE, " +
		"BOOLEAN), distinct and null counts, up to three example values and, for numeric columns, min/max/sum/avg."

	descFilterRows = "Return one page of rows whose cell in a column contains the query text, ignoring case. " +
		"Without a column the order column (PEDIDO) or the first column is used. Without a query every row matches."

	descGenerateInsights = "Ask the configured language model for trends, anomalies, opportunities and " +
		"recommendations about the current dataset. Placeholder texts are returned when no API key is configured."

	descResetSession = "Discard the current dataset and clear the persisted session."
)

// RegisterTools adds the dataset tools to s.
func RegisterTools(s *server.MCPServer, svc *app.Service) {
	s.AddTool(
		mcp.NewTool("ingest_file",
			mcp.WithDescription(descIngestFile),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Absolute or working-directory relative path of the file to load"),
			),
		),
		ingestFileHandler(svc),
	)

	s.AddTool(
		mcp.NewTool("get_indicators", mcp.WithDescription(descGetIndicators)),
		currentHandler(svc, func(snap *session.Snapshot) any { return snap.Indicators }),
	)

	s.AddTool(
		mcp.NewTool("get_charts", mcp.WithDescription(descGetCharts)),
		currentHandler(svc, func(snap *session.Snapshot) any { return snap.Charts }),
	)

	s.AddTool(
		mcp.NewTool("describe_columns", mcp.WithDescription(descDescribeColumns)),
		currentHandler(svc, func(snap *session.Snapshot) any { return snap.Dataset.Columns }),
	)

	s.AddTool(
		mcp.NewTool("filter_rows",
			mcp.WithDescription(descFilterRows),
			mcp.WithString("column", mcp.Description("Column to search (optional)")),
			mcp.WithString("query", mcp.Description("Text to look for (optional)")),
			mcp.WithNumber("page", mcp.Description("Zero-based page number. Defaults to 0.")),
		),
		filterRowsHandler(svc),
	)

	s.AddTool(
		mcp.NewTool("generate_insights", mcp.WithDescription(descGenerateInsights)),
		generateInsightsHandler(svc),
	)

	s.AddTool(
		mcp.NewTool("reset_session", mcp.WithDescription(descResetSession)),
		resetSessionHandler(svc),
	)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

const noDataset = "no dataset loaded; call ingest_file first"

// maxPage bounds the filter_rows page argument.
const maxPage = 1 << 30

func ingestFileHandler(svc *app.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, ok := request.GetArguments()["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		snap, err := svc.Ingest(ctx, path)
		if err != nil {
			var ie *app.IngestError
			if errors.As(err, &ie) {
				return mcp.NewToolResultError(fmt.Sprintf("%s (%v)", ie.Error(), ie.Err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("ingest failed: %v", err)), nil
		}

		return jsonResult(map[string]any{
			"id":         snap.ID,
			"fileName":   snap.FileName,
			"totalRows":  snap.Dataset.TotalRows,
			"columns":    snap.Dataset.Columns,
			"indicators": snap.Indicators,
			"charts":     snap.Charts,
		})
	}
}

func currentHandler(svc *app.Service, pick func(*session.Snapshot) any) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, ok := svc.Current(ctx)
		if !ok {
			return mcp.NewToolResultError(noDataset), nil
		}
		return jsonResult(pick(snap))
	}
}

func filterRowsHandler(svc *app.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		column, _ := args["column"].(string)
		query, _ := args["query"].(string)
		page := 0
		if p, ok := args["page"].(float64); ok {
			if p < 0 || p > maxPage || p != math.Trunc(p) {
				return mcp.NewToolResultError(fmt.Sprintf("page must be an integer between 0 and %d", maxPage)), nil
			}
			page = int(p)
		}

		res, err := svc.Rows(ctx, app.RowsQuery{Column: column, Query: query, Page: page})
		if errors.Is(err, app.ErrNoDataset) {
			return mcp.NewToolResultError(noDataset), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("filter failed: %v", err)), nil
		}
		return jsonResult(res)
	}
}

func generateInsightsHandler(svc *app.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		analysis, err := svc.Insights(ctx)
		if errors.Is(err, app.ErrNoDataset) {
			return mcp.NewToolResultError(noDataset), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("insights failed: %v", err)), nil
		}
		return jsonResult(analysis)
	}
}

func resetSessionHandler(svc *app.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		svc.Reset(ctx)
		return mcp.NewToolResultText("session cleared"), nil
	}
}
