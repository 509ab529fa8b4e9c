// Package handler maps HTTP requests onto the service layer.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/impservers/impchat/internal/config"
	"github.com/impservers/impchat/internal/delivery"
	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/presence"
	"github.com/impservers/impchat/internal/service"
)

// HealthChecker is the storage surface the readiness probe needs.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	account    service.AccountService
	message    service.MessageService
	attachment service.AttachmentService
	presence   *presence.Tracker
	hub        *delivery.Hub // nil in poll mode
	health     HealthChecker
	cfg        *config.Config
}

func New(
	account service.AccountService,
	message service.MessageService,
	attachment service.AttachmentService,
	presenceTracker *presence.Tracker,
	hub *delivery.Hub,
	health HealthChecker,
	cfg *config.Config,
) *Handler {
	return &Handler{
		account:    account,
		message:    message,
		attachment: attachment,
		presence:   presenceTracker,
		hub:        hub,
		health:     health,
		cfg:        cfg,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
