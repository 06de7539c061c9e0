package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/etpassistant/internal/analysis"
	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/fields"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
	"github.com/nikhilbhutani/etpassistant/pkg/textextract"
)

const maxImportSize = 32 << 20

type FieldHandler struct {
	wf      *analysis.Workflow
	backend *backend.Client
}

func NewFieldHandler(wf *analysis.Workflow, c *backend.Client) *FieldHandler {
	return &FieldHandler{wf: wf, backend: c}
}

func (h *FieldHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields": h.wf.Snapshot(),
		"active": h.wf.Active(),
	})
}

func (h *FieldHandler) Set(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req struct {
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.wf.SetValue(name, req.Value); err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "value": req.Value, "state": string(h.wf.State(name))})
}

// Import fills the field with the text of an uploaded PDF, DOCX or TXT.
func (h *FieldHandler) Import(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := fields.Lookup(name); !ok {
		writeError(w, "", fmt.Errorf("%w: %s", analysis.ErrUnknownField, name))
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form", "level": string(notice.LevelError)})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required", "level": string(notice.LevelError)})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read file", "level": string(notice.LevelError)})
		return
	}
	text, err := textextract.ExtractBytes(header.Filename, data)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error(), "level": string(notice.LevelWarning)})
		return
	}
	if err := h.wf.SetValue(name, text.Content); err != nil {
		writeError(w, "", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":  name,
		"value": text.Content,
		"pages": text.Pages,
		"type":  text.Type,
	})
}

func (h *FieldHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	a, err := h.wf.RequestAnalysis(r.Context(), name)
	if err != nil {
		writeError(w, "Erro na análise", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     name,
		"analysis": a,
		"status":   analysis.StatusForScore(a.Score),
		"state":    h.wf.State(name),
	})
}

func (h *FieldHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	a, ok := h.wf.Result(name)
	if !ok {
		writeError(w, "", fmt.Errorf("%w: %s", analysis.ErrNoResult, name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     name,
		"analysis": a,
		"status":   analysis.StatusForScore(a.Score),
		"state":    h.wf.State(name),
	})
}

func (h *FieldHandler) Apply(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	changed, err := h.wf.ApplySuggestion(name)
	if err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"changed": changed,
		"value":   h.wf.Value(name),
		"state":   h.wf.State(name),
	})
}

func (h *FieldHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.wf.Dismiss(name); err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "state": string(h.wf.State(name))})
}

func (h *FieldHandler) Example(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, ok := fields.Lookup(name)
	if !ok {
		writeError(w, "", fmt.Errorf("%w: %s", analysis.ErrUnknownField, name))
		return
	}
	example, err := h.backend.GenerateExample(r.Context(), f.AnalysisKind, h.wf.Values().NonEmpty())
	if err != nil {
		writeError(w, "Erro ao gerar exemplo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "example": example})
}

func (h *FieldHandler) Improve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string                  `json:"texto"`
		Kind backend.ImprovementKind `json:"tipo_melhoria"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Kind != "" && !req.Kind.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tipo_melhoria inválido", "level": string(notice.LevelWarning)})
		return
	}
	out, err := h.backend.ImproveText(r.Context(), req.Text, req.Kind)
	if err != nil {
		writeError(w, "Erro ao melhorar texto", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"texto_melhorado": out})
}
