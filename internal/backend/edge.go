package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/etpassistant/internal/config"
)

const msgEdgeFailure = "Erro na resposta da IA"

// EdgeClient invokes the Supabase edge function behind the generic chat
// assistant. Failures use the same *Error shape as Client.
type EdgeClient struct {
	url        string
	anonKey    string
	configured bool
	httpClient *http.Client
	logger     *slog.Logger
}

func NewEdgeClient(cfg config.EdgeConfig, backendCfg config.BackendConfig, logger *slog.Logger) *EdgeClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &EdgeClient{
		url:        fmt.Sprintf("%s/functions/v1/%s", cfg.SupabaseURL, cfg.Function),
		anonKey:    cfg.AnonKey,
		configured: cfg.SupabaseURL != "" && cfg.AnonKey != "",
		httpClient: &http.Client{Timeout: backendCfg.Timeout()},
		logger:     logger,
	}
}

// Configured reports whether a Supabase project was given.
func (c *EdgeClient) Configured() bool {
	return c.configured
}

type edgeResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Invoke sends one message and returns the assistant's reply.
func (c *EdgeClient) Invoke(ctx context.Context, message string) (string, error) {
	const endpoint = "edge:chat"

	data, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", requestError(endpoint, fmt.Errorf("marshal message: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", requestError(endpoint, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", networkError(endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", requestError(endpoint, fmt.Errorf("read response: %w", err))
	}

	var out edgeResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("edge function failed", "status", resp.StatusCode)
		return "", serverError(endpoint, resp.StatusCode, out.Error)
	}
	if decodeErr != nil {
		return "", requestError(endpoint, fmt.Errorf("decode response: %w", decodeErr))
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = msgEdgeFailure
		}
		return "", serverError(endpoint, resp.StatusCode, msg)
	}
	return out.Response, nil
}
