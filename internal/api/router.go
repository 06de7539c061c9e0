package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/etpassistant/internal/api/handlers"
	"github.com/nikhilbhutani/etpassistant/internal/api/middleware"
	"github.com/nikhilbhutani/etpassistant/internal/app"
	"github.com/nikhilbhutani/etpassistant/internal/chat"
)

type Router struct {
	mux *chi.Mux
	app *app.App
}

func NewRouter(a *app.App) *Router {
	return &Router{
		mux: chi.NewRouter(),
		app: a,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux
	cfg := rt.app.Config

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	rl := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"store": rt.app.Store,
		"backend": handlers.PingFunc(func(ctx context.Context) error {
			_, err := rt.app.Backend.Health(ctx)
			return err
		}),
	})
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api", func(r chi.Router) {
		settingsH := handlers.NewSettingsHandler(rt.app.Backend, rt.app.Status)
		r.Get("/status", settingsH.Status)
		r.Get("/sections", settingsH.Sections)
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsH.Get)
			r.Put("/", settingsH.Save)
			r.Post("/test", settingsH.Test)
			r.Post("/ai", settingsH.ConfigureAI)
			r.Post("/rag", settingsH.ConfigureRAG)
		})

		fieldH := handlers.NewFieldHandler(rt.app.Fields, rt.app.Backend)
		r.Post("/improve", fieldH.Improve)
		r.Route("/fields", func(r chi.Router) {
			r.Get("/", fieldH.List)
			r.Put("/{name}", fieldH.Set)
			r.Post("/{name}/import", fieldH.Import)
			r.Post("/{name}/analyze", fieldH.Analyze)
			r.Get("/{name}/analysis", fieldH.Analysis)
			r.Post("/{name}/apply", fieldH.Apply)
			r.Post("/{name}/dismiss", fieldH.Dismiss)
			r.Post("/{name}/example", fieldH.Example)
		})

		etpH := handlers.NewETPHandler(rt.app)
		r.Post("/etp/generate", etpH.Generate)
		r.Post("/etp/validate", etpH.Validate)
		r.Route("/drafts/current", func(r chi.Router) {
			r.Get("/", etpH.LoadDraft)
			r.Put("/", etpH.SaveDraft)
			r.Delete("/", etpH.ClearDraft)
		})

		docH := handlers.NewDocumentHandler(rt.app.Drafts)
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", docH.List)
			r.Post("/", docH.Create)
			r.Get("/template", docH.Template)
			r.Get("/{id}", docH.Get)
			r.Delete("/{id}", docH.Delete)
		})

		genH := handlers.NewGeneratorHandler(rt.app)
		r.Route("/generator", func(r chi.Router) {
			r.Get("/", genH.Get)
			r.Put("/", genH.Save)
			r.Get("/options", genH.Options)
			r.Get("/preview", genH.Preview)
			r.Post("/export", genH.Export)
		})

		ragH := handlers.NewChatHandler(rt.app.RAG, chat.SuggestedQuestions())
		r.Route("/rag/messages", func(r chi.Router) {
			r.Get("/", ragH.Messages)
			r.Post("/", ragH.Send)
			r.Delete("/", ragH.Clear)
		})

		chatH := handlers.NewChatHandler(rt.app.Chat, nil)
		r.Route("/chat/messages", func(r chi.Router) {
			r.Get("/", chatH.Messages)
			r.Post("/", chatH.Send)
			r.Delete("/", chatH.Clear)
		})

		statsH := handlers.NewStatsHandler(rt.app.Stats)
		r.Get("/stats", statsH.Get)

		llmH := handlers.NewLLMHandler(rt.app.LLM)
		r.Get("/llm/models", llmH.Models)
	})

	return r
}
