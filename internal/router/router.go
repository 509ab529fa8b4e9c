// Package router wires handlers, middleware and rate limits into the HTTP
// route table.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/impservers/impchat/internal/middleware"
	"github.com/impservers/impchat/internal/middleware/metrics"
	rl "github.com/impservers/impchat/internal/middleware/ratelimiter"
	"github.com/impservers/impchat/internal/setup"
)

// New builds the route table. Rate limits are per identity: IP for the
// anonymous auth endpoints, user id once signed in.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	// Probes and scraping stay outside the metrics middleware.
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(metrics.Middleware)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/config", h.PublicConfig)

			r.Route("/auth", func(r chi.Router) {
				// Anonymous endpoints are throttled by IP against
				// credential stuffing and register floods.
				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimit(rl.New(1.0/10, 2, time.Hour), mw.SenderIdentity))
					r.Post("/register", h.Register)
				})
				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimit(rl.New(1, 3, time.Hour), mw.SenderIdentity))
					r.Post("/login", h.Login)
				})
				r.Post("/logout", h.Logout)
			})

			r.Group(func(r chi.Router) {
				r.Use(authMw.NeedAuth())

				r.Get("/messages", h.ListMessages)
				// One message per second per sender, small burst allowance.
				r.With(mw.RateLimit(rl.New(1, 3, time.Hour), mw.SenderIdentity)).
					Post("/messages", h.CreateMessage)
				r.Delete("/messages/{message}", h.DeleteMessage)

				r.Post("/typing", h.SignalTyping)
				r.Get("/typing", h.ActiveTyping)

				r.With(mw.RateLimit(rl.New(0.5, 2, time.Hour), mw.SenderIdentity)).
					Post("/attachments", h.UploadAttachment)
				r.Get("/attachments/{key}", h.DownloadAttachment)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(authMw.LeaderOnly())
				r.Get("/users", h.ListUsers)
				r.Post("/users", h.CreateUser)
				r.Put("/users/{name}", h.UpdateUser)
				r.Delete("/users/{name}", h.DeleteUser)
			})
		})
	})

	// The websocket upgrade needs the raw ResponseWriter (hijacking), so it
	// bypasses the metrics wrapper; the hub tracks its own connection gauge.
	if deps.Hub != nil {
		r.With(authMw.NeedAuth()).Get("/v1/ws", h.ConnectWs)
	}

	// Preflight requests must not 404.
	r.MethodFunc("OPTIONS", "/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
