package scoring

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/pkg/response"
	"github.com/modwarden/warden-api/internal/pkg/validator"
)

// Handler handles scoring HTTP requests
type Handler struct {
	service  *Service
	pipeline *Pipeline
	members  member.Repository
}

// NewHandler creates scoring handler
func NewHandler(service *Service, pipeline *Pipeline, members member.Repository) *Handler {
	return &Handler{
		service:  service,
		pipeline: pipeline,
		members:  members,
	}
}

// IngestMessage runs a chat message through the moderation pipeline
// POST /ingest/message
func (h *Handler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	var req IngestMessageRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.pipeline.HandleMessage(r.Context(), req.DiscordID, req.Username, req.Content, req.ContextMessages)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, result)
}

// ListWarnings lists warnings, optionally filtered by user
// GET /warnings?discord_id=&limit=&offset=
func (h *Handler) ListWarnings(w http.ResponseWriter, r *http.Request) {
	filter := &ListWarningsFilter{
		DiscordID: r.URL.Query().Get("discord_id"),
		Limit:     parseQueryInt(r, "limit", 50),
		Offset:    parseQueryInt(r, "offset", 0),
	}

	warnings, total, err := h.service.ListWarnings(r.Context(), filter)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, warnings, response.Meta{
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetWarning returns one warning
// GET /warnings/{id}
func (h *Handler) GetWarning(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid warning ID")
		return
	}

	warning, err := h.service.GetWarning(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrWarningNotFound) {
			response.NotFound(w, "Warning not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, warning)
}

// IgnoreWarning dismisses a warning retroactively
// POST /warnings/{id}/ignore
func (h *Handler) IgnoreWarning(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid warning ID")
		return
	}

	var req IgnoreWarningRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	warning, err := h.service.IgnoreWarning(r.Context(), id, req.ReviewerID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrWarningNotFound):
			response.NotFound(w, "Warning not found")
		case errors.Is(err, ErrWarningAlreadyIgnored):
			response.Conflict(w, "Warning is already ignored")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, warning)
}

// ListUsers lists members with moderation records
// GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50)
	offset := parseQueryInt(r, "offset", 0)

	users, err := h.members.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	total, _ := h.members.Count(r.Context())

	response.WithMeta(w, users, response.Meta{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetUser returns one member
// GET /users/{discordID}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	user, err := h.members.GetByDiscordID(r.Context(), discordID)
	if err != nil {
		response.InternalError(w)
		return
	}
	if user == nil {
		response.NotFound(w, "User not found")
		return
	}

	response.OK(w, user)
}

// ListUserPunishments returns the punishment audit trail of a member
// GET /users/{discordID}/punishments
func (h *Handler) ListUserPunishments(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	punishments, err := h.service.ListPunishments(r.Context(), discordID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, punishments)
}

// RecalculateUser rebuilds a member's total and punishment status
// POST /users/{discordID}/recalculate
func (h *Handler) RecalculateUser(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	user, err := h.service.Recalculate(r.Context(), discordID)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			response.NotFound(w, "User not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, user)
}

// ResetUser ignores all counted warnings and clears punishment status
// POST /users/{discordID}/reset
func (h *Handler) ResetUser(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	user, err := h.service.ResetWarnings(r.Context(), discordID)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			response.NotFound(w, "User not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, user)
}

func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
