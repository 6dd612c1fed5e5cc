package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/datamind-cli/internal/app"
	"github.com/KaramelBytes/datamind-cli/internal/insight"
)

const salesCSV = "PEDIDO;Cidade;VALOR\nP1;SP;100\nP2;RJ;200\nP3;SP;50\n"

// isolate points HOME at a temp dir and clears variables that would leak
// real configuration into the run.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"API_KEY", "GEMINI_API_KEY", "DATAMIND_API_KEY", "DATAMIND_PROVIDER",
		"DATAMIND_SESSION_BACKEND", "DATAMIND_SESSION_DSN", "DATAMIND_DATA_DIR", "DATAMIND_PAGE_SIZE"} {
		t.Setenv(k, "")
	}
	return home
}

// resetFlags restores every flag to its default so state does not leak
// between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func writeData(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestCLI_IngestShowRowsReset(t *testing.T) {
	home := isolate(t)
	path := writeData(t, home, "vendas.csv", salesCSV)

	out := mustRun(t, "ingest", path)
	if !strings.Contains(out, "✓ Ingested vendas.csv: 3 rows, 3 columns") {
		t.Fatalf("unexpected ingest output:\n%s", out)
	}
	if !strings.Contains(out, "Total de Registros") || !strings.Contains(out, "Top 10 Cidades por VALOR") {
		t.Fatalf("expected indicators and charts in output:\n%s", out)
	}

	// A fresh process state restores the session from ~/.datamind/session.json.
	out = mustRun(t, "show", "--json")
	var summary struct {
		FileName  string `json:"fileName"`
		TotalRows int    `json:"totalRows"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode show output: %v\n%s", err, out)
	}
	if summary.FileName != "vendas.csv" || summary.TotalRows != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(home, ".datamind", "session.json")); err != nil {
		t.Fatalf("expected session file: %v", err)
	}

	out = mustRun(t, "rows", "--column", "Cidade", "--query", "sp", "--json")
	var page struct {
		Column string `json:"column"`
		Total  int    `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decode rows output: %v\n%s", err, out)
	}
	if page.Column != "Cidade" || page.Total != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}

	out = mustRun(t, "rows")
	if !strings.Contains(out, "Page 1 of 1") || !strings.Contains(out, "filtered on PEDIDO") {
		t.Fatalf("unexpected grid output:\n%s", out)
	}

	mustRun(t, "reset")
	if _, err := runCmd(t, "show"); err == nil {
		t.Fatalf("expected show to fail after reset")
	}
}

func TestCLI_FailedIngestKeepsSession(t *testing.T) {
	home := isolate(t)
	mustRun(t, "ingest", writeData(t, home, "vendas.csv", salesCSV))

	_, err := runCmd(t, "ingest", writeData(t, home, "vazio.csv", "PEDIDO;VALOR\n"))
	if err == nil {
		t.Fatalf("expected ingest of an empty file to fail")
	}
	if err.Error() != app.IngestFailureMessage {
		t.Fatalf("unexpected error message: %q", err.Error())
	}

	out := mustRun(t, "show")
	if !strings.Contains(out, "vendas.csv") {
		t.Fatalf("previous session should survive:\n%s", out)
	}
}

func TestCLI_InsightsWithoutKey(t *testing.T) {
	home := isolate(t)
	mustRun(t, "ingest", writeData(t, home, "vendas.csv", salesCSV))

	out := mustRun(t, "insights", "--json")
	var a insight.Analysis
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("decode insights: %v\n%s", err, out)
	}
	if len(a.Trends) != 1 || a.Trends[0] != insight.MissingKeyAnalysis().Trends[0] {
		t.Fatalf("expected missing-key placeholder, got %+v", a)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)

	mustRun(t, "config", "set", "page_size", "5")
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "page_size: 5") {
		t.Fatalf("expected saved page_size:\n%s", out)
	}

	if _, err := runCmd(t, "config", "set", "provider", "bogus"); err == nil {
		t.Fatalf("expected invalid provider to be rejected")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestCLI_ConfigShowMasksKey(t *testing.T) {
	isolate(t)
	t.Setenv("DATAMIND_API_KEY", "sk-1234567890")

	out := mustRun(t, "config", "show")
	if strings.Contains(out, "sk-1234567890") || !strings.Contains(out, "sk-****890") {
		t.Fatalf("api key should be masked:\n%s", out)
	}
}

func TestCLI_Version(t *testing.T) {
	isolate(t)
	out := mustRun(t, "version")
	if !strings.HasPrefix(out, "datamind ") {
		t.Fatalf("unexpected version output: %q", out)
	}
}
