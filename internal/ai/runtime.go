package ai

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Runtime is implemented by text-generation backends.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// RequiresAPIKey reports whether provider is a hosted API that needs a key.
func RequiresAPIKey(provider string) bool {
	return provider != ProviderOllama
}

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// APIKey authenticates hosted providers.
	APIKey string
	// BaseURL overrides the provider endpoint root. For Ollama it is the host.
	BaseURL string
}

// withDefaults fills zero fields with the given fallbacks.
func (c RuntimeConfig) withDefaults(timeout time.Duration, retries int, base, maxDelay time.Duration) RuntimeConfig {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = timeout
	}
	if c.RetryMax <= 0 {
		c.RetryMax = retries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = base
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = maxDelay
	}
	return c
}

// RuntimeFactory builds a Runtime from the generic config.
type RuntimeFactory func(RuntimeConfig) Runtime

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// NewRuntime creates the Runtime registered for provider.
func NewRuntime(provider string, cfg RuntimeConfig) (Runtime, error) {
	f, ok := registry[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", provider, Providers())
	}
	return f(cfg), nil
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterRuntime(ProviderGemini, func(c RuntimeConfig) Runtime { return NewGeminiClient(c) })
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) Runtime { return NewOpenRouterClient(c) })
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime { return NewOllamaClient(c) })
}
