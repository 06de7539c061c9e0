package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
)

// VertexProvider talks to Gemini models on Vertex AI.
type VertexProvider struct {
	client *genai.Client
}

func NewVertexProvider(ctx context.Context, projectID, region string) (*VertexProvider, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("vertex: project and region are required")
	}
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexProvider{client: client}, nil
}

func (p *VertexProvider) Name() string { return "vertex" }

func (p *VertexProvider) Models() []string {
	return []string{"gemini-1.5-pro", "gemini-1.5-flash"}
}

func (p *VertexProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	model := p.client.GenerativeModel(req.Model)
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	var history []*genai.Content
	var last string
	for i, m := range req.Messages {
		switch {
		case m.Role == "system":
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Content)}}
		case i == len(req.Messages)-1 && m.Role == "user":
			last = m.Content
		default:
			role := "user"
			if m.Role == "assistant" {
				role = "model"
			}
			history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}

	session := model.StartChat()
	session.History = history
	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, fmt.Errorf("vertex chat: %w", err)
	}

	out := &ChatResponse{
		Provider:  "vertex",
		Model:     req.Model,
		Content:   vertexText(resp),
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func vertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

func (p *VertexProvider) Close() error {
	return p.client.Close()
}
