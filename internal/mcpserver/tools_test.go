package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/KaramelBytes/datamind-cli/internal/app"
	"github.com/KaramelBytes/datamind-cli/internal/dashboard"
	"github.com/KaramelBytes/datamind-cli/internal/insight"
	"github.com/KaramelBytes/datamind-cli/internal/telemetry"
)

const salesCSV = "PEDIDO;Cidade;VALOR\nP1;SP;100\nP2;RJ;200\nP3;SP;50\n"

// client is one initialized in-process MCP session.
type client struct {
	s   *server.MCPServer
	ctx context.Context
	ids int
}

func newClient(t *testing.T, s *server.MCPServer) *client {
	t.Helper()
	ctx := context.Background()
	session := server.NewInProcessSession("test", nil)
	require.NoError(t, s.RegisterSession(ctx, session))
	sessionCtx := s.WithContext(ctx, session)

	initBytes, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0", "id": "init", "method": "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-03-26",
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
		},
	})
	s.HandleMessage(sessionCtx, initBytes)
	return &client{s: s, ctx: sessionCtx}
}

func (c *client) callTool(t *testing.T, toolName string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	c.ids++
	reqBytes, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0", "id": fmt.Sprintf("call-%d", c.ids), "method": "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": args,
		},
	})
	resp := c.s.HandleMessage(c.ctx, reqBytes)
	respBytes, _ := json.Marshal(resp)

	var rpc struct {
		Result *mcp.CallToolResult       `json:"result"`
		Error  *struct{ Message string } `json:"error,omitempty"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &rpc))
	require.Nil(t, rpc.Error, "unexpected RPC error: %v", rpc.Error)
	require.NotNil(t, rpc.Result)
	return rpc.Result
}

func toolText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return ""
	}
	return tc.Text
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func setupServer(t *testing.T) (*client, *app.Service) {
	t.Helper()
	svc := app.New()
	return newClient(t, NewServer("test", svc, nil, nil, nil)), svc
}

func TestToolsRequireDataset(t *testing.T) {
	c, _ := setupServer(t)
	for _, name := range []string{"get_indicators", "get_charts", "describe_columns", "filter_rows", "generate_insights"} {
		res := c.callTool(t, name, map[string]any{})
		assert.True(t, res.IsError, name)
		assert.Contains(t, toolText(res), "no dataset loaded", name)
	}
}

func TestIngestFile(t *testing.T) {
	c, svc := setupServer(t)

	res := c.callTool(t, "ingest_file", map[string]any{"path": writeCSV(t, "vendas.csv", salesCSV)})
	require.False(t, res.IsError, toolText(res))

	var out struct {
		FileName  string `json:"fileName"`
		TotalRows int    `json:"totalRows"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(res)), &out))
	assert.Equal(t, "vendas.csv", out.FileName)
	assert.Equal(t, 3, out.TotalRows)

	_, ok := svc.Current(context.Background())
	assert.True(t, ok)
}

func TestIngestFile_Errors(t *testing.T) {
	c, svc := setupServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing path", map[string]any{}, "path is required"},
		{"no records", map[string]any{"path": writeCSV(t, "vazio.csv", "PEDIDO;VALOR\n")}, app.IngestFailureMessage},
		{"missing file", map[string]any{"path": filepath.Join(t.TempDir(), "nada.csv")}, app.IngestFailureMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := c.callTool(t, "ingest_file", tc.args)
			assert.True(t, res.IsError)
			assert.Contains(t, toolText(res), tc.want)
		})
	}
	_, ok := svc.Current(context.Background())
	assert.False(t, ok)
}

func TestReadTools(t *testing.T) {
	c, _ := setupServer(t)
	require.False(t, c.callTool(t, "ingest_file", map[string]any{"path": writeCSV(t, "vendas.csv", salesCSV)}).IsError)

	var inds []dashboard.Indicator
	require.NoError(t, json.Unmarshal([]byte(toolText(c.callTool(t, "get_indicators", nil))), &inds))
	require.Len(t, inds, 4)
	assert.Equal(t, "3", inds[0].Value)

	var charts []dashboard.Chart
	require.NoError(t, json.Unmarshal([]byte(toolText(c.callTool(t, "get_charts", nil))), &charts))
	require.Len(t, charts, 2)
	assert.Equal(t, dashboard.Point{Category: "RJ", Value: 200}, charts[0].Data[0])

	var cols []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(c.callTool(t, "describe_columns", nil))), &cols))
	require.Len(t, cols, 3)
	assert.Equal(t, "VALOR", cols[2].Name)
	assert.Equal(t, "NUMBER", cols[2].Type)
}

func TestFilterRows(t *testing.T) {
	c, _ := setupServer(t)
	require.False(t, c.callTool(t, "ingest_file", map[string]any{"path": writeCSV(t, "vendas.csv", salesCSV)}).IsError)

	res := c.callTool(t, "filter_rows", map[string]any{"column": "Cidade", "query": "sp"})
	require.False(t, res.IsError, toolText(res))
	var page struct {
		Column string           `json:"column"`
		Total  int              `json:"total"`
		Rows   []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(res)), &page))
	assert.Equal(t, "Cidade", page.Column)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Rows, 2)

	res = c.callTool(t, "filter_rows", map[string]any{"column": "Estado"})
	assert.True(t, res.IsError)

	for _, page := range []any{-1, 1.5, 1e19, 922337203685477581} {
		res = c.callTool(t, "filter_rows", map[string]any{"page": page})
		assert.True(t, res.IsError, "page %v", page)
	}

	res = c.callTool(t, "filter_rows", map[string]any{"page": 3})
	require.False(t, res.IsError, toolText(res))
	require.NoError(t, json.Unmarshal([]byte(toolText(res)), &page))
	assert.Empty(t, page.Rows)
}

func TestGenerateInsightsAndReset(t *testing.T) {
	c, svc := setupServer(t)
	require.False(t, c.callTool(t, "ingest_file", map[string]any{"path": writeCSV(t, "vendas.csv", salesCSV)}).IsError)

	var a insight.Analysis
	require.NoError(t, json.Unmarshal([]byte(toolText(c.callTool(t, "generate_insights", nil))), &a))
	assert.Equal(t, insight.MissingKeyAnalysis(), a)

	res := c.callTool(t, "reset_session", nil)
	assert.False(t, res.IsError)
	_, ok := svc.Current(context.Background())
	assert.False(t, ok)
}

func TestHooksRecordToolDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	c := newClient(t, NewServer("test", app.New(), nil, nil, telemetry.NewInstrumentsFromMeter(mp.Meter("test"))))
	c.callTool(t, "reset_session", nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "datamind.tool.duration" {
				found = true
			}
		}
	}
	assert.True(t, found)
}
