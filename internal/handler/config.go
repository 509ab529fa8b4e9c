package handler

import (
	"net/http"

	"github.com/impservers/impchat/internal/api"
)

// PublicConfig tells clients how to talk to this deployment: whether to
// open a websocket or poll, and how often.
func (h *Handler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.PublicConfigResponse{
		DeliveryMode:      h.cfg.Public.DeliveryMode,
		PollIntervalSec:   int(h.cfg.Public.PollInterval.Seconds()),
		TypingTTLSec:      int(h.cfg.Public.TypingTTL.Seconds()),
		MaxAttachmentSize: h.cfg.Public.MaxAttachmentSize,
	})
}
