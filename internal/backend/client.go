package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikhilbhutani/etpassistant/internal/config"
)

// Client talks to the ETP backend. It performs no retries and no caching;
// every failure comes back once, as an *Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.BackendConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: logger,
	}
}

// Call sends payload (JSON encoded, nil for no body) to endpoint and decodes
// a 2xx response body into out (ignored when nil).
func (c *Client) Call(ctx context.Context, method, endpoint string, payload, out any) error {
	start := time.Now()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return requestError(endpoint, fmt.Errorf("marshal payload: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return requestError(endpoint, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend unreachable", "endpoint", endpoint, "error", err)
		return networkError(endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestError(endpoint, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("backend call",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(endpoint, resp.StatusCode, errorDetail(raw))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return requestError(endpoint, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// errorDetail pulls the server's own message out of an error body. Only a
// string "detail" is passed through; validation arrays and anything else
// fall back to the generic message.
func errorDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.Call(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, payload, out any) error {
	return c.Call(ctx, http.MethodPost, endpoint, payload, out)
}
