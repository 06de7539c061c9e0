package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nikhilbhutani/etpassistant/internal/config"
)

var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-opus-20240229",
	"ollama":    "llama3",
	"vertex":    "gemini-1.5-pro",
}

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
	model           string
	maxTokens       int
	temperature     float64
	logger          *slog.Logger
	closers         []func() error
}

// NewGateway registers every provider that has credentials in cfg.
func NewGateway(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.Provider,
		model:           cfg.Model,
		maxTokens:       cfg.MaxTokens,
		temperature:     cfg.Temperature,
		logger:          logger,
	}

	if cfg.OpenAIKey != "" {
		g.Register(NewOpenAIProvider(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		g.Register(NewAnthropicProvider(cfg.AnthropicKey))
	}
	if cfg.OllamaURL != "" {
		g.Register(NewOllamaProvider(cfg.OllamaURL))
	}
	if cfg.VertexProject != "" {
		v, err := NewVertexProvider(ctx, cfg.VertexProject, cfg.VertexRegion)
		if err != nil {
			return nil, err
		}
		g.Register(v)
		g.closers = append(g.closers, v.Close)
	}

	return g, nil
}

// Register adds or replaces a provider under its own name.
func (g *gateway) Register(p Provider) {
	g.providers[p.Name()] = p
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}
	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	if req.Model == "" {
		req.Model = g.modelFor(providerName)
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = g.maxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = g.temperature
	}

	resp, err := p.ChatCompletion(ctx, req)
	if err != nil {
		g.logger.Warn("llm call failed", "provider", providerName, "model", req.Model, "error", err)
		return nil, err
	}
	g.logger.Debug("llm call",
		"provider", providerName,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

func (g *gateway) modelFor(provider string) string {
	if g.model != "" && provider == g.defaultProvider {
		return g.model
	}
	return defaultModels[provider]
}

func (g *gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, p := range g.providers {
		def := g.modelFor(p.Name())
		for _, m := range p.Models() {
			models = append(models, ModelInfo{
				Provider: p.Name(),
				Model:    m,
				Default:  p.Name() == g.defaultProvider && m == def,
			})
		}
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].Model < models[j].Model
	})
	return models
}

func (g *gateway) Close() error {
	var first error
	for _, c := range g.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
