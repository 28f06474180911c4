package scoring

import (
	"github.com/go-chi/chi/v5"

	"github.com/modwarden/warden-api/internal/middleware"
)

// Routes returns warning and user moderation routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/warnings", h.ListWarnings)
	r.Get("/warnings/{id}", h.GetWarning)
	r.Post("/warnings/{id}/ignore", h.IgnoreWarning)

	r.Get("/users", h.ListUsers)
	r.Get("/users/{discordID}", h.GetUser)
	r.Get("/users/{discordID}/punishments", h.ListUserPunishments)
	r.Post("/users/{discordID}/recalculate", h.RecalculateUser)
	r.Post("/users/{discordID}/reset", h.ResetUser)

	return r
}

// IngestRoutes returns the message ingest route guarded by a bearer token
func (h *Handler) IngestRoutes(token string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.IngestAuth(token))
	r.Post("/message", h.IngestMessage)

	return r
}
