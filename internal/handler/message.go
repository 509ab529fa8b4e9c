package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/impservers/impchat/internal/api"
	"github.com/impservers/impchat/internal/middleware"
	"github.com/impservers/impchat/internal/utils"
)

// ListMessages returns messages after the client's cursor. since=0 (or
// absent) returns the full history. Polling clients hit this on a timer;
// push clients use it once for catch-up after connecting.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	var since int64
	if sinceQuery := r.URL.Query().Get("since"); sinceQuery != "" {
		var err error
		if since, err = parseInt64Param(sinceQuery, "since"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	messages, err := h.message.List(since)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.MessagesResponse{Messages: messages})
}

func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.CreateMessageRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.message.Send(user, body.Text, body.Attachment)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.CreateMessageResponse{Message: msg})
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	msgId, err := parseInt64Param(chi.URLParam(r, "message"), "message id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.message.Delete(user, msgId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
