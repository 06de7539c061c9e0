package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/etpassistant/internal/drafts"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
)

// DocumentHandler serves documents saved from the rich-text editor.
type DocumentHandler struct {
	store *drafts.Store
}

func NewDocumentHandler(s *drafts.Store) *DocumentHandler {
	return &DocumentHandler{store: s}
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.store.Save(r.Context(), req.Title, req.Content)
	if err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, notice.Success("Documento excluído"))
}

// Template returns the blank editor document.
func (h *DocumentHandler) Template(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"content": drafts.Template()})
}
