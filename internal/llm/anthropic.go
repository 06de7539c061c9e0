package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	client anthropic.Client
}

func NewAnthropicProvider(apiKey string, opts ...option.RequestOption) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Models() []string {
	return []string{
		"claude-3-opus-20240229",
		"claude-3-haiku-20240307",
		"claude-sonnet-4-20250514",
	}
}

// turn is one message after roles have been made to alternate.
type turn struct {
	assistant bool
	text      string
}

// alternate folds system messages into one prompt and merges runs of the
// same role, dropping assistant turns before the first user turn. The
// Messages API rejects conversations that do not alternate user/assistant
// starting with the user.
func alternate(msgs []Message) (string, []turn) {
	var system []string
	var out []turn
	for _, m := range msgs {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		assistant := m.Role == "assistant"
		if len(out) == 0 && assistant {
			continue
		}
		if n := len(out); n > 0 && out[n-1].assistant == assistant {
			out[n-1].text += "\n\n" + m.Content
			continue
		}
		out = append(out, turn{assistant: assistant, text: m.Content})
	}
	return strings.Join(system, "\n\n"), out
}

func (p *AnthropicProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	system, turns := alternate(req.Messages)
	if len(turns) == 0 {
		return nil, fmt.Errorf("anthropic chat: no user message")
	}
	msgs := make([]anthropic.MessageParam, len(turns))
	for i, t := range turns {
		if t.assistant {
			msgs[i] = anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.text))
		} else {
			msgs[i] = anthropic.NewUserMessage(anthropic.NewTextBlock(t.text))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(max(req.MaxTokens, 1)),
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	in, out := int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens)
	return &ChatResponse{
		ID:           resp.ID,
		Provider:     p.Name(),
		Model:        string(resp.Model),
		Content:      sb.String(),
		InputTokens:  in,
		OutputTokens: out,
		CostUSD:      CalculateCost(req.Model, in, out),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
