package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/etpassistant/internal/llm"
)

// LLMHandler reports the models the generic chat can fall back to.
type LLMHandler struct {
	gateway llm.Gateway
}

func NewLLMHandler(gw llm.Gateway) *LLMHandler {
	return &LLMHandler{gateway: gw}
}

func (h *LLMHandler) Models(w http.ResponseWriter, r *http.Request) {
	models := h.gateway.ListModels()
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}
