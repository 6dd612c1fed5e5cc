// Package insight asks a text-generation runtime for a narrative reading of
// a dataset: trends, anomalies, opportunities and recommendations.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/datamind-cli/internal/ai"
	"github.com/KaramelBytes/datamind-cli/internal/dataset"
)

// Analysis is the narrative result. Lists are never nil.
type Analysis struct {
	Trends          []string `json:"trends"`
	Anomalies       []string `json:"anomalies"`
	Opportunities   []string `json:"opportunities"`
	Recommendations []string `json:"recommendations"`
}

// MissingKeyAnalysis is returned when no API key is configured.
func MissingKeyAnalysis() Analysis {
	return Analysis{
		Trends:          []string{"Please configure your Gemini API Key to see real trends."},
		Anomalies:       []string{"API key missing."},
		Opportunities:   []string{"Add API key to .env"},
		Recommendations: []string{"Check metadata.json for setup instructions."},
	}
}

// FailedAnalysis is returned when generation or parsing fails.
func FailedAnalysis() Analysis {
	return Analysis{
		Trends:          []string{"Analysis failed."},
		Anomalies:       []string{"Could not process data."},
		Opportunities:   []string{},
		Recommendations: []string{"Try again later."},
	}
}

// Options configures the request sent to the runtime.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
}

// Generator produces an Analysis for a dataset. Failures never surface as
// errors; they are logged and replaced by a placeholder analysis.
type Generator struct {
	rt   ai.Runtime
	opts Options
	log  *slog.Logger
}

// NewGenerator wires a runtime. A nil logger discards logs.
func NewGenerator(rt ai.Runtime, opts Options, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Generator{rt: rt, opts: opts, log: log}
}

func (g *Generator) Generate(ctx context.Context, ds *dataset.Dataset) Analysis {
	if g.rt == nil || (ai.RequiresAPIKey(g.opts.Provider) && g.opts.APIKey == "") {
		g.log.Warn("no API key configured, returning placeholder insights", "provider", g.opts.Provider)
		return MissingKeyAnalysis()
	}

	prompt, err := BuildPrompt(Summarize(ds))
	if err != nil {
		g.log.Error("build insight prompt", "err", err)
		return FailedAnalysis()
	}
	resp, err := g.rt.Generate(ctx, ai.GenerateRequest{
		Model:       g.opts.Model,
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
		JSON:        true,
	})
	if err != nil {
		if errors.Is(err, ai.ErrMissingAPIKey) {
			g.log.Warn("runtime has no API key, returning placeholder insights", "provider", g.opts.Provider)
			return MissingKeyAnalysis()
		}
		g.log.Error("insight generation failed", "provider", g.opts.Provider, "model", g.opts.Model, "err", err)
		return FailedAnalysis()
	}
	a, err := ParseAnalysis(resp.Text())
	if err != nil {
		g.log.Error("insight response unusable", "request_id", resp.RequestID, "err", err)
		return FailedAnalysis()
	}
	g.log.Debug("insights generated", "request_id", resp.RequestID, "tokens", resp.Usage.TotalTokens)
	return a
}

// ParseAnalysis decodes a model answer. A surrounding Markdown code fence is
// stripped and missing keys become empty lists.
func ParseAnalysis(text string) (Analysis, error) {
	text = stripCodeFence(text)
	if text == "" {
		return Analysis{}, errors.New("empty response")
	}
	var a Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	for _, list := range []*[]string{&a.Trends, &a.Anomalies, &a.Opportunities, &a.Recommendations} {
		if *list == nil {
			*list = []string{}
		}
	}
	return a, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
