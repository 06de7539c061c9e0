package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/etpassistant/internal/app"
	"github.com/nikhilbhutani/etpassistant/internal/document"
)

// GeneratorHandler serves the structured generator form and its PDF.
type GeneratorHandler struct {
	app *app.App
}

func NewGeneratorHandler(a *app.App) *GeneratorHandler {
	return &GeneratorHandler{app: a}
}

func (h *GeneratorHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modalidades":            document.Modalities(),
		"criterios":              document.Criteria(),
		"documentacaoNecessaria": document.DocumentationOptions(),
	})
}

func (h *GeneratorHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.app.Drafts.LoadForm(r.Context())
	if err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"form": form, "ready": form.HasMinimumData()})
}

func (h *GeneratorHandler) Save(w http.ResponseWriter, r *http.Request) {
	var form document.Form
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := h.app.Drafts.SaveForm(r.Context(), form); err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"form": form, "ready": form.HasMinimumData()})
}

// Preview returns the assembled document without rendering it.
func (h *GeneratorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	form, err := h.app.Drafts.LoadForm(r.Context())
	if err != nil {
		writeError(w, "", err)
		return
	}
	doc := document.Assemble(form, h.app.Now())
	writeJSON(w, http.StatusOK, map[string]interface{}{"document": doc, "text": doc.Text()})
}

func (h *GeneratorHandler) Export(w http.ResponseWriter, r *http.Request) {
	art, err := h.app.ExportForm(r.Context())
	if err != nil {
		writeError(w, "Erro ao gerar PDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("X-Page-Count", strconv.Itoa(art.Pages))
	if art.Location != "" {
		w.Header().Set("X-Export-Location", art.Location)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}
