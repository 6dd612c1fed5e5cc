package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datamind-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// Session persistence
	SessionBackend string `mapstructure:"session_backend" yaml:"session_backend"`
	SessionDSN     string `mapstructure:"session_dsn" yaml:"session_dsn"`
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`

	// Logging and telemetry
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat   string `mapstructure:"log_format" yaml:"log_format"`
	OTelEnabled bool   `mapstructure:"otel_enabled" yaml:"otel_enabled"`

	// HTTP API
	ServerAddr  string   `mapstructure:"server_addr" yaml:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	PageSize    int      `mapstructure:"page_size" yaml:"page_size"`
}

const envPrefix = "DATAMIND"

// defaultDir is the per-user directory for config and session data.
func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datamind"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "gemini-2.5-flash")
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("temperature", 0.4)
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("session_backend", "file")
	v.SetDefault("session_dsn", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("page_size", 10)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (DATAMIND_*) > config file (cfgFile or ~/.datamind/config.yaml) > defaults.
// A .env file in the working directory is loaded first without overriding
// variables that are already set. API_KEY and GEMINI_API_KEY are accepted
// when api_key is otherwise empty.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.APIKey == "" {
		for _, k := range []string{"GEMINI_API_KEY", "API_KEY"} {
			if val := strings.TrimSpace(os.Getenv(k)); val != "" {
				c.APIKey = val
				break
			}
		}
	}
	if c.DataDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.DataDir = dir
	}
	c.DataDir = utils.ExpandHome(c.DataDir)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datamind/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks enumerations and cross-field constraints.
func (c *Global) Validate() error {
	switch c.Provider {
	case "gemini", "openrouter", "ollama":
	default:
		return fmt.Errorf("invalid provider %q: must be gemini, openrouter, or ollama", c.Provider)
	}
	switch c.SessionBackend {
	case "file", "sqlite":
	case "postgres":
		if c.SessionDSN == "" {
			return errors.New("session_dsn is required when session_backend is \"postgres\"")
		}
	default:
		return fmt.Errorf("invalid session_backend %q: must be file, sqlite, or postgres", c.SessionBackend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be \"text\" or \"json\"", c.LogFormat)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid page_size %d: must be a positive integer", c.PageSize)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("invalid temperature %v: must be between 0 and 2", c.Temperature)
	}
	return nil
}

// ResolvedSessionDSN returns session_dsn, or the backend's default location
// under data_dir when it is empty.
func (c *Global) ResolvedSessionDSN() string {
	if c.SessionDSN != "" {
		return c.SessionDSN
	}
	switch c.SessionBackend {
	case "sqlite":
		return filepath.Join(c.DataDir, "session.db")
	case "file":
		return filepath.Join(c.DataDir, "session.json")
	}
	return ""
}

// settable lists the keys accepted by Set.
var settable = map[string]func(c *Global, v string) error{
	"api_key":  func(c *Global, v string) error { c.APIKey = v; return nil },
	"provider": func(c *Global, v string) error { c.Provider = strings.ToLower(v); return nil },
	"model":    func(c *Global, v string) error { c.Model = v; return nil },
	"max_tokens": func(c *Global, v string) error {
		return setInt(&c.MaxTokens, "max_tokens", v)
	},
	"temperature": func(c *Global, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature value %q: %w", v, err)
		}
		c.Temperature = f
		return nil
	},
	"http_timeout_sec":    func(c *Global, v string) error { return setInt(&c.HTTPTimeoutSec, "http_timeout_sec", v) },
	"retry_max_attempts":  func(c *Global, v string) error { return setInt(&c.RetryMaxAttempts, "retry_max_attempts", v) },
	"retry_base_delay_ms": func(c *Global, v string) error { return setInt(&c.RetryBaseDelayMs, "retry_base_delay_ms", v) },
	"retry_max_delay_ms":  func(c *Global, v string) error { return setInt(&c.RetryMaxDelayMs, "retry_max_delay_ms", v) },
	"ollama_host":         func(c *Global, v string) error { c.OllamaHost = v; return nil },
	"session_backend":     func(c *Global, v string) error { c.SessionBackend = strings.ToLower(v); return nil },
	"session_dsn":         func(c *Global, v string) error { c.SessionDSN = v; return nil },
	"data_dir":            func(c *Global, v string) error { c.DataDir = v; return nil },
	"log_level":           func(c *Global, v string) error { c.LogLevel = strings.ToLower(v); return nil },
	"log_format":          func(c *Global, v string) error { c.LogFormat = strings.ToLower(v); return nil },
	"otel_enabled": func(c *Global, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid otel_enabled value %q: %w", v, err)
		}
		c.OTelEnabled = b
		return nil
	},
	"server_addr": func(c *Global, v string) error { c.ServerAddr = v; return nil },
	"cors_origins": func(c *Global, v string) error {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
		return nil
	},
	"page_size": func(c *Global, v string) error { return setInt(&c.PageSize, "page_size", v) },
}

// Set assigns one key from its string form. c is left unchanged when the
// value does not parse or the result fails validation.
func (c *Global) Set(key, value string) error {
	f, ok := settable[key]
	if !ok {
		return fmt.Errorf("unknown key %q (supported: %s)", key, strings.Join(Keys(), ", "))
	}
	next := *c
	if err := f(&next, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Keys lists the configuration keys accepted by Set, sorted.
func Keys() []string {
	out := make([]string, 0, len(settable))
	for k := range settable {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func setInt(dst *int, key, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

// ParseLogLevel maps debug|info|warn|error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level value %q: must be debug, info, warn, or error", s)
	}
}
