// Package logging builds the process logger. Logs always go to a writer
// separate from command output, normally stderr.
package logging

import (
	"io"
	"log/slog"

	"github.com/KaramelBytes/datamind-cli/internal/config"
)

// New returns a text or JSON slog logger at the given level.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// FromConfig builds the logger from log_level and log_format. forceJSON is
// set by long-running surfaces whose logs are usually collected.
func FromConfig(w io.Writer, c *config.Global, forceJSON bool) (*slog.Logger, error) {
	format := c.LogFormat
	if forceJSON {
		format = "json"
	}
	return New(w, c.LogLevel, format)
}
