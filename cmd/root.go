package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datamind-cli/internal/ai"
	"github.com/KaramelBytes/datamind-cli/internal/app"
	cfgpkg "github.com/KaramelBytes/datamind-cli/internal/config"
	"github.com/KaramelBytes/datamind-cli/internal/insight"
	"github.com/KaramelBytes/datamind-cli/internal/logging"
	"github.com/KaramelBytes/datamind-cli/internal/session"
	"github.com/KaramelBytes/datamind-cli/internal/telemetry"

	// Session backends register themselves.
	_ "github.com/KaramelBytes/datamind-cli/internal/session/postgres"
	_ "github.com/KaramelBytes/datamind-cli/internal/session/sqlite"
)

var (
	cfgFile string
	debug   bool
	// Overrides applied on top of the loaded config when set
	flagProvider         string
	flagModel            string
	flagSessionBackend   string
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "datamind",
	Short: "DataMind CLI: instant dashboards and insights from spreadsheets",
	Long: `DataMind ingests a spreadsheet or delimited text file, infers column types, normalizes every
cell and derives headline indicators, chart aggregates and AI-written insights. Results persist
between runs and are also served over HTTP (serve) and MCP (mcp).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.datamind/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&flagProvider, "provider", "", "insight provider: gemini, openrouter or ollama (overrides config)")
	pf.StringVar(&flagModel, "model", "", "insight model (overrides config)")
	pf.StringVar(&flagSessionBackend, "session-backend", "", "session store: file, sqlite or postgres (overrides config)")
	pf.IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	pf.IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	pf.IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	pf.IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	cfg, cfgErr = nil, nil
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		cfgErr = err
		return
	}

	f := rootCmd.PersistentFlags()
	if f.Changed("provider") && flagProvider != "" {
		c.Provider = flagProvider
	}
	if f.Changed("model") && flagModel != "" {
		c.Model = flagModel
	}
	if f.Changed("session-backend") && flagSessionBackend != "" {
		c.SessionBackend = flagSessionBackend
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		c.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		c.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		c.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		c.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if debug {
		c.LogLevel = "debug"
	}
	if err := c.Validate(); err != nil {
		cfgErr = err
		return
	}
	cfg = c
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("load config: %w", cfgErr)
	}
	if cfg == nil {
		return nil, errors.New("no config loaded")
	}
	return cfg, nil
}

// runtimeEnv is everything a command needs to work on the current dataset.
type runtimeEnv struct {
	svc   *app.Service
	log   *slog.Logger
	close func()
}

// openService wires config, logger, session store, insight runtime and
// telemetry into an ingestion service. longRunning selects JSON logs and
// enables OTel when configured.
func openService(ctx context.Context, logOut io.Writer, longRunning bool) (*runtimeEnv, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.FromConfig(logOut, c, longRunning)
	if err != nil {
		return nil, err
	}

	var closers []func()
	opts := []app.Option{app.WithLogger(logger)}

	store, err := session.Open(ctx, session.Config{Kind: c.SessionBackend, DSN: c.ResolvedSessionDSN()})
	if err != nil {
		// Without a store the session lives only for this process.
		logger.Warn("session store unavailable", "backend", c.SessionBackend, "err", err)
		fmt.Fprintf(os.Stderr, "⚠ Warning: session store unavailable (%v); results will not persist\n", err)
	} else {
		opts = append(opts, app.WithStore(store))
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				logger.Warn("close session store", "err", err)
			}
		})
	}

	rt, err := ai.NewRuntime(c.Provider, runtimeConfig(c))
	if err != nil {
		logger.Warn("insight runtime unavailable", "provider", c.Provider, "err", err)
	} else {
		opts = append(opts, app.WithInsights(insight.NewGenerator(rt, insight.Options{
			Provider:    c.Provider,
			Model:       c.Model,
			APIKey:      c.APIKey,
			MaxTokens:   c.MaxTokens,
			Temperature: c.Temperature,
		}, logger)))
	}

	if longRunning && c.OTelEnabled {
		provider, err := telemetry.Init(ctx, "datamind", Version)
		if err != nil {
			logger.Warn("telemetry disabled", "err", err)
		} else {
			opts = append(opts, app.WithTracer(telemetry.Tracer(true)), app.WithInstruments(telemetry.NewInstruments()))
			closers = append(closers, func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := provider.Shutdown(sctx); err != nil {
					logger.Warn("telemetry shutdown", "err", err)
				}
			})
			logger.Info("telemetry enabled")
		}
	}

	return &runtimeEnv{
		svc: app.New(opts...),
		log: logger,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

func runtimeConfig(c *cfgpkg.Global) ai.RuntimeConfig {
	rc := ai.RuntimeConfig{
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		APIKey:      c.APIKey,
	}
	if c.Provider == ai.ProviderOllama {
		rc.BaseURL = c.OllamaHost
	}
	return rc
}
