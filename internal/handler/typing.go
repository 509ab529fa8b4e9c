package handler

import (
	"net/http"

	"github.com/impservers/impchat/internal/api"
	"github.com/impservers/impchat/internal/middleware"
)

// SignalTyping records "the caller is typing now". Signals expire on their
// own, so there is no explicit stop call.
func (h *Handler) SignalTyping(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.presence.Signal(user.Name)
	w.WriteHeader(http.StatusNoContent)
}

// ActiveTyping lists who is typing right now, excluding the caller.
func (h *Handler) ActiveTyping(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, api.TypingResponse{Typing: h.presence.Active(user.Name)})
}
