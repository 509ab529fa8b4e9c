package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/impservers/impchat/internal/delivery"
	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin API; cookie auth already gates the handshake.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ConnectWs upgrades an authenticated request to a websocket viewer. The
// handshake is a plain GET, so the auth middleware has already verified the
// token before we get here. Only mounted in push mode.
func (h *Handler) ConnectWs(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if h.hub == nil {
		http.Error(w, "Push delivery is disabled", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logger.Log.Error("websocket upgrade failed", "error", err)
		return
	}

	delivery.NewClient(h.hub, conn, user.Name).Start()
	logger.Log.Info("websocket viewer connected", "name", user.Name)
}
