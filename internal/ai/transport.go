package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// transport posts JSON with retry and exponential backoff. 429 and 5xx
// responses and transient network errors are retried; a Retry-After header
// overrides the computed delay.
type transport struct {
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	// classify maps a non-2xx response to a typed error.
	classify func(*APIError, *http.Response) error
	// netErr wraps a final network failure. Nil keeps the error as is.
	netErr func(error) error
}

func newTransport(cfg RuntimeConfig) *transport {
	return &transport{
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		maxAttempts: cfg.RetryMax,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		classify:    classifyAPIError,
	}
}

// postJSON sends payload to endpoint and decodes a 2xx body into out.
// It returns the provider request id when one is present.
func (t *transport) postJSON(ctx context.Context, endpoint string, headers http.Header, payload []byte, out any) (string, error) {
	backoff := t.baseDelay
	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, vals := range headers {
			for _, v := range vals {
				req.Header.Add(k, v)
			}
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < t.maxAttempts {
				lastErr = err
				if err := sleepCtx(ctx, t.capped(withJitter(backoff))); err != nil {
					return "", err
				}
				backoff *= 2
				continue
			}
			if t.netErr != nil {
				return "", t.netErr(err)
			}
			return "", fmt.Errorf("http request: %w", err)
		}

		requestID := extractRequestID(resp)
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return requestID, fmt.Errorf("decode response: %w", err)
			}
			return requestID, nil
		}

		apiErr := readAPIError(resp)
		resp.Body.Close()
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable || attempt == t.maxAttempts {
			return requestID, t.classify(apiErr, resp)
		}
		lastErr = apiErr
		wait := t.capped(withJitter(backoff))
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := parseRetryAfterSeconds(ra); err == nil && secs >= 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return "", err
		}
		backoff *= 2
	}
	return "", lastErr
}

func (t *transport) capped(d time.Duration) time.Duration {
	if t.maxDelay > 0 && d > t.maxDelay {
		return t.maxDelay
	}
	return d
}

// readAPIError decodes the common error envelopes:
// {"error":{"message","code"|"status"}}, {"error":"..."} and {"message","code"}.
func readAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw, RequestID: extractRequestID(resp)}
	switch v := raw["error"].(type) {
	case map[string]any:
		apiErr.Message, _ = v["message"].(string)
		if code, ok := v["code"].(string); ok {
			apiErr.Code = code
		} else if status, ok := v["status"].(string); ok {
			apiErr.Code = status
		}
	case string:
		apiErr.Message = v
	}
	if apiErr.Message == "" {
		apiErr.Message, _ = raw["message"].(string)
	}
	if apiErr.Code == "" {
		apiErr.Code, _ = raw["code"].(string)
	}
	return apiErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// parseRetryAfterSeconds tries to interpret Retry-After header value as seconds or HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "Openrouter-Request-ID", "X-Goog-Request-Id", "X-Amzn-Requestid"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// withJitter returns a backoff duration with +/- 20% jitter applied.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
