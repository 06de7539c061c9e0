package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/etpassistant/internal/app"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
)

// ETPHandler covers whole-document operations over the critical fields and
// the current draft snapshot.
type ETPHandler struct {
	app *app.App
}

func NewETPHandler(a *app.App) *ETPHandler {
	return &ETPHandler{app: a}
}

func (h *ETPHandler) Generate(w http.ResponseWriter, r *http.Request) {
	gen, err := h.app.GenerateETP(r.Context())
	if err != nil {
		writeError(w, "Erro ao gerar ETP", err)
		return
	}
	writeJSON(w, http.StatusOK, gen)
}

func (h *ETPHandler) Validate(w http.ResponseWriter, r *http.Request) {
	res, err := h.app.Backend.ValidateConsistency(r.Context(), h.app.Fields.Values().NonEmpty())
	if err != nil {
		writeError(w, "Erro na validação", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LoadDraft restores the saved snapshot into the fields and returns it.
func (h *ETPHandler) LoadDraft(w http.ResponseWriter, r *http.Request) {
	values, err := h.app.Drafts.LoadCurrent(r.Context())
	if err != nil {
		writeError(w, "", err)
		return
	}
	h.app.Fields.Load(values)
	writeJSON(w, http.StatusOK, map[string]interface{}{"values": h.app.Fields.Values()})
}

func (h *ETPHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Drafts.SaveCurrent(r.Context(), h.app.Fields.Values()); err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, notice.Success("Rascunho salvo com sucesso!"))
}

func (h *ETPHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Drafts.ClearCurrent(r.Context()); err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
