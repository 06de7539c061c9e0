package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/etpassistant/internal/config"
)

type stubProvider struct {
	name  string
	calls int
	last  ChatRequest
	err   error
}

func (s *stubProvider) Name() string     { return s.name }
func (s *stubProvider) Models() []string { return []string{"m1", "m2"} }

func (s *stubProvider) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{Provider: s.name, Model: req.Model, Content: "ok"}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(t *testing.T, cfg config.LLMConfig, providers ...Provider) *gateway {
	t.Helper()
	gw, err := NewGateway(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	g := gw.(*gateway)
	for _, p := range providers {
		g.Register(p)
	}
	return g
}

func TestChatFillsDefaults(t *testing.T) {
	stub := &stubProvider{name: "openai"}
	g := newTestGateway(t, config.LLMConfig{Provider: "openai", MaxTokens: 4000, Temperature: 0.7}, stub)

	resp, err := g.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "oi"}}})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "gpt-4o-mini", stub.last.Model)
	assert.Equal(t, 4000, stub.last.MaxTokens)
	assert.InDelta(t, 0.7, stub.last.Temperature, 1e-9)
}

func TestChatConfiguredModelOnlyForDefaultProvider(t *testing.T) {
	openai := &stubProvider{name: "openai"}
	anth := &stubProvider{name: "anthropic"}
	g := newTestGateway(t, config.LLMConfig{Provider: "openai", Model: "gpt-4o"}, openai, anth)

	_, err := g.Chat(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", openai.last.Model)

	_, err = g.Chat(context.Background(), ChatRequest{Provider: "anthropic"})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-opus-20240229", anth.last.Model)
}

func TestChatNoRetryNoFallback(t *testing.T) {
	failing := &stubProvider{name: "openai", err: errors.New("boom")}
	other := &stubProvider{name: "anthropic"}
	g := newTestGateway(t, config.LLMConfig{Provider: "openai"}, failing, other)

	_, err := g.Chat(context.Background(), ChatRequest{})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, failing.calls)
	assert.Zero(t, other.calls)
}

func TestChatUnknownProvider(t *testing.T) {
	g := newTestGateway(t, config.LLMConfig{Provider: "vertex"})
	_, err := g.Chat(context.Background(), ChatRequest{})
	assert.ErrorContains(t, err, `provider "vertex" not configured`)
}

func TestListModelsMarksDefault(t *testing.T) {
	g := newTestGateway(t, config.LLMConfig{Provider: "stub", Model: "m2"}, &stubProvider{name: "stub"})
	models := g.ListModels()
	require.Len(t, models, 2)
	assert.False(t, models[0].Default)
	assert.True(t, models[1].Default)
}

func TestOllamaProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		if req.Model == "missing" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"model 'missing' not found"}`))
			return
		}
		json.NewEncoder(w).Encode(ollamaResponse{
			Message:         Message{Role: "assistant", Content: "Pregão é..."},
			PromptEvalCount: 12,
			EvalCount:       5,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL)
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Model:    "llama3",
		Messages: WithSystem([]Message{{Role: "user", Content: "O que é pregão?"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pregão é...", resp.Content)
	assert.Equal(t, 12, resp.InputTokens)

	_, err = p.ChatCompletion(context.Background(), ChatRequest{
		Model:    "missing",
		Messages: WithSystem([]Message{{Role: "user", Content: "oi"}}),
	})
	assert.ErrorContains(t, err, "model 'missing' not found")
}

func TestAlternate(t *testing.T) {
	system, turns := alternate([]Message{
		{Role: "system", Content: "s1"},
		{Role: "assistant", Content: "saudação"},
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "assistant", Content: "c"},
		{Role: "system", Content: "s2"},
		{Role: "user", Content: "d"},
	})
	assert.Equal(t, "s1\n\ns2", system)
	assert.Equal(t, []turn{
		{assistant: false, text: "a\n\nb"},
		{assistant: true, text: "c"},
		{assistant: false, text: "d"},
	}, turns)
}

func TestOpenAIProviderAgainstFakeServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Resposta"}}],
			"usage":{"prompt_tokens":1000,"completion_tokens":1000,"total_tokens":2000}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithBaseURL("sk-test", srv.URL)
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{Model: "gpt-4o-mini", Messages: []Message{{Role: "user", Content: "oi"}}})
	require.NoError(t, err)
	assert.Equal(t, "Resposta", resp.Content)
	assert.InDelta(t, 0.00075, resp.CostUSD, 1e-9)
}

func TestWithSystem(t *testing.T) {
	msgs := WithSystem([]Message{{Role: "user", Content: "x"}})
	require.Len(t, msgs, 2)
	assert.Equal(t, SystemPrompt, msgs[0].Content)

	again := WithSystem(msgs)
	assert.Len(t, again, 2)
}

func TestFitHistory(t *testing.T) {
	long := strings.Repeat("a", 400) // 100 tokens
	history := []Message{
		{Role: "user", Content: long},
		{Role: "assistant", Content: long},
		{Role: "user", Content: long},
	}

	kept, dropped := FitHistory(history, 250)
	assert.True(t, dropped)
	assert.Equal(t, history[1:], kept)

	kept, dropped = FitHistory(history, 300)
	assert.False(t, dropped)
	assert.Len(t, kept, 3)

	kept, dropped = FitHistory(history, 50)
	assert.True(t, dropped)
	assert.Empty(t, kept)
}
