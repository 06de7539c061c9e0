package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikhilbhutani/etpassistant/internal/analysis"
	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/chat"
	"github.com/nikhilbhutani/etpassistant/internal/drafts"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "level": string(notice.LevelError)})
		return false
	}
	return true
}

// writeError renders err as {"error", "level"} with the message the user
// would see.
func writeError(w http.ResponseWriter, action string, err error) {
	n := notice.FromError(action, err)
	writeJSON(w, statusFor(err), map[string]string{"error": n.Message, "level": string(n.Level)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrUnknownField),
		errors.Is(err, drafts.ErrNotFound),
		errors.Is(err, drafts.ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrAssistantUnavailable),
		errors.Is(err, chat.ErrAssistantUnavailable),
		errors.Is(err, analysis.ErrNoResult):
		return http.StatusConflict
	case notice.FromError("", err).Level == notice.LevelWarning:
		return http.StatusUnprocessableEntity
	}
	if be, ok := backend.AsError(err); ok {
		if be.Kind == backend.KindNetwork {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
