package chat

import (
	"context"

	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/llm"
)

// Reply is what a responder produced for one question.
type Reply struct {
	Text    string
	Sources []string
}

// Responder answers a question given the conversation so far, oldest first.
type Responder interface {
	Respond(ctx context.Context, text string, history []Turn) (Reply, error)
	// Available reports whether the assistant is configured. It answers
	// from local state, without a request.
	Available() bool
}

// RAGBackend is the part of the backend client the legal assistant uses.
type RAGBackend interface {
	AskRAG(ctx context.Context, question string, history []backend.Turn) (*backend.Answer, error)
}

// StatusSource reports the capabilities last seen live.
type StatusSource interface {
	Current() backend.Status
}

// RAGResponder asks the backend's retrieval assistant. History roles go out
// as "human" and "assistant".
type RAGResponder struct {
	Backend RAGBackend
	Status  StatusSource
}

func (r RAGResponder) Available() bool {
	return r.Status.Current().Has(backend.CapabilityRAGAssistant)
}

func (r RAGResponder) Respond(ctx context.Context, text string, history []Turn) (Reply, error) {
	h := make([]backend.Turn, len(history))
	for i, t := range history {
		role := "assistant"
		if t.Role == SenderUser {
			role = "human"
		}
		h[i] = backend.Turn{Role: role, Content: t.Content}
	}
	ans, err := r.Backend.AskRAG(ctx, text, h)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: ans.Text, Sources: ans.Sources}, nil
}

// EdgeInvoker is the Supabase edge function client.
type EdgeInvoker interface {
	Configured() bool
	Invoke(ctx context.Context, message string) (string, error)
}

// EdgeResponder sends only the new message; the function keeps no state
// and takes no history.
type EdgeResponder struct {
	Edge EdgeInvoker
}

func (e EdgeResponder) Available() bool {
	return e.Edge.Configured()
}

func (e EdgeResponder) Respond(ctx context.Context, text string, _ []Turn) (Reply, error) {
	out, err := e.Edge.Invoke(ctx, text)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: out}, nil
}

// LLMResponder talks to a language model directly, without the backend.
// Only the newest turns that fit HistoryBudget tokens are sent; zero means
// llm.DefaultHistoryBudget.
type LLMResponder struct {
	Gateway       llm.Gateway
	Provider      string
	HistoryBudget int
}

func (l LLMResponder) Available() bool {
	if l.Provider == "" {
		return len(l.Gateway.ListModels()) > 0
	}
	_, err := l.Gateway.Provider(l.Provider)
	return err == nil
}

func (l LLMResponder) Respond(ctx context.Context, text string, history []Turn) (Reply, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		msgs = append(msgs, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	budget := l.HistoryBudget
	if budget <= 0 {
		budget = llm.DefaultHistoryBudget
	}
	msgs, _ = llm.FitHistory(msgs, budget)
	msgs = append(msgs, llm.Message{Role: "user", Content: text})

	resp, err := l.Gateway.Chat(ctx, llm.ChatRequest{Provider: l.Provider, Messages: llm.WithSystem(msgs)})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: resp.Content}, nil
}
