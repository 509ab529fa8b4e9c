// Package setup builds the dependency graph once at startup.
package setup

import (
	"github.com/impservers/impchat/internal/config"
	"github.com/impservers/impchat/internal/delivery"
	"github.com/impservers/impchat/internal/handler"
	"github.com/impservers/impchat/internal/jwt"
	"github.com/impservers/impchat/internal/middleware"
	"github.com/impservers/impchat/internal/presence"
	"github.com/impservers/impchat/internal/service"
	"github.com/impservers/impchat/internal/storage/fs"
	"github.com/impservers/impchat/internal/storage/pg"
	"github.com/impservers/impchat/internal/validation"
)

// Dependencies holds everything main needs to run and shut down cleanly.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Blobs          *fs.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Hub            *delivery.Hub // nil in poll mode
	Sweeper        *service.Sweeper
	Presence       *presence.Tracker
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := fs.New(cfg.Public.MediaRoot)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.Public.JwtTTL)
	authMw := middleware.NewAuth(jwtService, cfg.Public.SecureCookies)

	presenceTracker := presence.New(cfg.Public.TypingTTL)

	// Push mode runs the websocket hub; poll mode serves the same messages
	// through list polling only.
	var hub *delivery.Hub
	var channel delivery.Channel
	if cfg.Public.DeliveryMode == "push" {
		hub = delivery.NewHub()
		channel = hub
	} else {
		channel = delivery.NewPollChannel()
	}

	account := service.NewAccount(storage, jwtService)
	message := service.NewMessage(storage, validation.New(), channel, presenceTracker)
	attachment := service.NewAttachment(blobs, cfg.Public.MaxAttachmentSize)
	sweeper := service.NewSweeper(blobs, cfg.Public.MediaRetention)

	h := handler.New(account, message, attachment, presenceTracker, hub, storage, cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Blobs:          blobs,
		Handler:        h,
		AuthMiddleware: authMw,
		Hub:            hub,
		Sweeper:        sweeper,
		Presence:       presenceTracker,
	}, nil
}
