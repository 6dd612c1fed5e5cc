package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir and clears variables that leak into Load.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"API_KEY", "GEMINI_API_KEY", "DATAMIND_API_KEY"} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-9)
	assert.Equal(t, "file", cfg.SessionBackend)
	assert.Equal(t, filepath.Join(home, ".datamind"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".datamind", "session.json"), cfg.ResolvedSessionDSN())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Empty(t, cfg.APIKey)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openrouter\nmodel: from-file\npage_size: 25\n"), 0o644))
	t.Setenv("DATAMIND_MODEL", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "from-env", cfg.Model)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestLoad_APIKeyFallbacks(t *testing.T) {
	isolate(t)
	t.Setenv("API_KEY", "plain")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.APIKey)

	t.Setenv("GEMINI_API_KEY", "gemini")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.APIKey)

	t.Setenv("DATAMIND_API_KEY", "prefixed")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"provider", map[string]string{"DATAMIND_PROVIDER": "bard"}, "provider"},
		{"backend", map[string]string{"DATAMIND_SESSION_BACKEND": "redis"}, "session_backend"},
		{"postgres without dsn", map[string]string{"DATAMIND_SESSION_BACKEND": "postgres"}, "session_dsn"},
		{"log level", map[string]string{"DATAMIND_LOG_LEVEL": "loud"}, "log_level"},
		{"log format", map[string]string{"DATAMIND_LOG_FORMAT": "xml"}, "log_format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSetAndSave(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Set("provider", "Ollama"))
	require.NoError(t, cfg.Set("cors_origins", "http://a, http://b"))
	require.NoError(t, cfg.Set("page_size", "50"))
	require.Error(t, cfg.Set("page_size", "zero"))
	require.Error(t, cfg.Set("page_size", "0"))
	require.ErrorContains(t, cfg.Set("nope", "x"), "unknown key")
	assert.Equal(t, 50, cfg.PageSize, "failed Set leaves the value untouched")
	require.NoError(t, Save(cfg, path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", reloaded.Provider)
	assert.Equal(t, []string{"http://a", "http://b"}, reloaded.CORSOrigins)
	assert.Equal(t, 50, reloaded.PageSize)
}

func TestResolvedSessionDSN(t *testing.T) {
	c := &Global{DataDir: "/data", SessionBackend: "sqlite"}
	assert.Equal(t, filepath.Join("/data", "session.db"), c.ResolvedSessionDSN())
	c.SessionDSN = "/elsewhere.db"
	assert.Equal(t, "/elsewhere.db", c.ResolvedSessionDSN())
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}
