// Package app wires configuration into the workflows shared by the HTTP
// service and the command line tool.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/etpassistant/internal/analysis"
	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/chat"
	"github.com/nikhilbhutani/etpassistant/internal/config"
	"github.com/nikhilbhutani/etpassistant/internal/document"
	"github.com/nikhilbhutani/etpassistant/internal/drafts"
	"github.com/nikhilbhutani/etpassistant/internal/export"
	"github.com/nikhilbhutani/etpassistant/internal/kv"
	"github.com/nikhilbhutani/etpassistant/internal/llm"
	"github.com/nikhilbhutani/etpassistant/internal/stats"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Backend  *backend.Client
	Edge     *backend.EdgeClient
	Status   *backend.StatusCache
	LLM      llm.Gateway
	Store    kv.Backend
	Fields   *analysis.Workflow
	Drafts   *drafts.Store
	Stats    *stats.Counter
	RAG      *chat.Conversation
	Chat     *chat.Conversation
	Renderer *export.Renderer
	Sink     export.Sink
	Now      func() time.Time
}

// New connects the store and builds every workflow. The backend's
// capability status is read once here; an unreachable backend leaves every
// capability off until the status is refreshed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := kv.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	scoped := kv.Prefixed(store, cfg.Profile)

	gw, err := llm.NewGateway(ctx, cfg.LLM, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("llm gateway: %w", err)
	}

	sink, err := export.NewSink(ctx, cfg.Export)
	if err != nil {
		gw.Close()
		store.Close()
		return nil, fmt.Errorf("export sink: %w", err)
	}

	client := backend.NewClient(cfg.Backend, logger)
	edge := backend.NewEdgeClient(cfg.Edge, cfg.Backend, logger)
	status := backend.NewStatusCache(client, logger)
	status.Refresh(ctx)
	counter := stats.NewCounter(scoped, logger)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Backend:  client,
		Edge:     edge,
		Status:   status,
		LLM:      gw,
		Store:    store,
		Fields:   analysis.NewWorkflow(client, status, logger),
		Drafts:   drafts.NewStore(scoped),
		Stats:    counter,
		Renderer: export.NewRenderer(),
		Sink:     sink,
		Now:      time.Now,
	}

	a.Fields.OnAnalyzed(func(string, *backend.Analysis) {
		counter.Track(context.Background(), stats.AssistantUsage)
	})
	a.RAG = chat.NewConversation(chat.RAGHistoryKey, scoped, chat.RAGResponder{Backend: client, Status: status},
		chat.WithLogger(logger),
		chat.OnAnswered(func() { counter.Track(context.Background(), stats.RAGQueries) }),
	)
	a.Chat = chat.NewConversation(chat.ChatHistoryKey, scoped, a.generalResponder(),
		chat.WithLogger(logger),
		chat.WithGreeting(chat.Greeting),
	)

	if values, err := a.Drafts.LoadCurrent(ctx); err == nil {
		a.Fields.Load(values)
	}
	if err := a.RAG.Load(ctx); err != nil {
		logger.Warn("rag transcript not loaded", "error", err)
	}
	if err := a.Chat.Load(ctx); err != nil {
		logger.Warn("chat transcript not loaded", "error", err)
	}

	return a, nil
}

// generalResponder prefers the edge function and falls back to a direct
// model call when no Supabase project is configured.
func (a *App) generalResponder() chat.Responder {
	if a.Edge.Configured() {
		return chat.EdgeResponder{Edge: a.Edge}
	}
	return chat.LLMResponder{Gateway: a.LLM}
}

// GenerateETP asks the backend for a full ETP from the current field values.
func (a *App) GenerateETP(ctx context.Context) (*backend.Generated, error) {
	gen, err := a.Backend.GenerateETP(ctx, a.Fields.Values().NonEmpty())
	if err != nil {
		return nil, err
	}
	a.Stats.Track(ctx, stats.ETPsCreated)
	return gen, nil
}

// ExportForm exports the stored generator form.
func (a *App) ExportForm(ctx context.Context) (*export.Artifact, error) {
	form, err := a.Drafts.LoadForm(ctx)
	if err != nil {
		return nil, err
	}
	return a.Export(ctx, form)
}

// Export renders form and hands the PDF to the sink, if there is one.
func (a *App) Export(ctx context.Context, form document.Form) (*export.Artifact, error) {
	art, err := a.Renderer.Export(form, a.Now())
	if err != nil {
		return nil, err
	}
	if a.Sink != nil {
		loc, err := a.Sink.Put(ctx, art.FileName, art.Data)
		if err != nil {
			return nil, fmt.Errorf("store export: %w", err)
		}
		art.Location = loc
	}
	a.Stats.Track(ctx, stats.ETPsCreated)
	a.Logger.Info("etp exported", "file", art.FileName, "pages", art.Pages, "location", art.Location)
	return art, nil
}

func (a *App) Close() error {
	if c, ok := a.Sink.(io.Closer); ok {
		c.Close()
	}
	a.LLM.Close()
	return a.Store.Close()
}
