package handlers

import (
	"context"
	"net/http"

	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
)

// SettingsHandler passes status and provider settings through to the
// backend. Reading the status, or changing a setting, refreshes the
// capability cache the workflows gate on.
type SettingsHandler struct {
	backend *backend.Client
	status  *backend.StatusCache
}

func NewSettingsHandler(c *backend.Client, status *backend.StatusCache) *SettingsHandler {
	return &SettingsHandler{backend: c, status: status}
}

func (h *SettingsHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.status.Refresh(r.Context())
	if err != nil {
		writeError(w, "Erro ao verificar status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     st,
		"health":     st.Health(),
		"checked_at": h.status.FetchedAt(),
	})
}

// refresh runs after a settings change; a failure leaves everything off
// and is only logged.
func (h *SettingsHandler) refresh(ctx context.Context) {
	h.status.Refresh(ctx)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.backend.Settings(r.Context())
	if err != nil {
		writeError(w, "Erro ao carregar configurações", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	s := backend.DefaultSettings()
	if !decodeJSON(w, r, &s) {
		return
	}
	msg, err := h.backend.SaveSettings(r.Context(), s)
	if err != nil {
		writeError(w, "Erro ao salvar configurações", err)
		return
	}
	h.refresh(r.Context())
	if msg == "" {
		msg = "Configurações salvas com sucesso!"
	}
	writeJSON(w, http.StatusOK, notice.Success(msg))
}

func (h *SettingsHandler) Test(w http.ResponseWriter, r *http.Request) {
	s := backend.DefaultSettings()
	if !decodeJSON(w, r, &s) {
		return
	}
	res, err := h.backend.TestConnection(r.Context(), s)
	if err != nil {
		writeError(w, "Erro ao testar conexão", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *SettingsHandler) ConfigureAI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		APIKey   string `json:"api_key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.backend.ConfigureAI(r.Context(), req.Provider, req.APIKey)
	if err != nil {
		writeError(w, "Erro ao configurar IA", err)
		return
	}
	h.refresh(r.Context())
	writeJSON(w, http.StatusOK, notice.Success(msg))
}

func (h *SettingsHandler) ConfigureRAG(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paths    []string `json:"caminhos_pdf"`
		Provider string   `json:"provider"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Provider == "" {
		req.Provider = "openai"
	}
	n, err := h.backend.ConfigureRAG(r.Context(), req.Paths, req.Provider)
	if err != nil {
		writeError(w, "Erro ao configurar RAG", err)
		return
	}
	h.refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"documentos": n})
}

// Sections returns the critical fields and the section mapping together.
func (h *SettingsHandler) Sections(w http.ResponseWriter, r *http.Request) {
	critical, err := h.backend.CriticalFields(r.Context())
	if err != nil {
		writeError(w, "", err)
		return
	}
	mapping, total, err := h.backend.SectionMap(r.Context())
	if err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"campos":       critical,
		"mapeamento":   mapping,
		"total_secoes": total,
	})
}
