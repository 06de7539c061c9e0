package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/etpassistant/internal/chat"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
)

// ChatHandler exposes one assistant transcript.
type ChatHandler struct {
	conv        *chat.Conversation
	suggestions []string
}

func NewChatHandler(conv *chat.Conversation, suggestions []string) *ChatHandler {
	return &ChatHandler{conv: conv, suggestions: suggestions}
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"messages": h.conv.Messages()}
	if h.suggestions != nil {
		resp["suggestions"] = h.suggestions
	}
	writeJSON(w, http.StatusOK, resp)
}

// Send posts a question. When the assistant fails the apology that was
// added to the transcript comes back next to the error.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.conv.Send(r.Context(), req.Message)
	if err != nil {
		if msg.IsError {
			n := notice.FromError("", err)
			writeJSON(w, statusFor(err), map[string]interface{}{
				"error":   n.Message,
				"level":   n.Level,
				"message": msg,
			})
			return
		}
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": msg})
}

func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.conv.Clear(r.Context()); err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
