package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient talks to the OpenAI-compatible chat completions API.
type OpenRouterClient struct {
	t       *transport
	apiKey  string
	baseURL string
}

type openRouterRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	Temperature    float64           `json:"temperature,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// NewOpenRouterClient applies 60s timeout, 3 attempts and 500ms..4s backoff
// to zero fields of cfg.
func NewOpenRouterClient(cfg RuntimeConfig) *OpenRouterClient {
	cfg = cfg.withDefaults(60*time.Second, 3, 500*time.Millisecond, 4*time.Second)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}
	return &OpenRouterClient{t: newTransport(cfg), apiKey: cfg.APIKey, baseURL: baseURL}
}

func (c *OpenRouterClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openrouter: %w", ErrMissingAPIKey)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	wire := openRouterRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		wire.ResponseFormat = map[string]string{"type": "json_object"}
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.apiKey)
	headers.Set("HTTP-Referer", "https://github.com/KaramelBytes/datamind-cli")
	headers.Set("X-Title", "DataMind CLI")

	var out GenerateResponse
	requestID, err := c.t.postJSON(ctx, c.baseURL+"/chat/completions", headers, payload, &out)
	if err != nil {
		return nil, err
	}
	out.RequestID = requestID
	return &out, nil
}
