package policy

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/modwarden/warden-api/internal/pkg/response"
	"github.com/modwarden/warden-api/internal/pkg/validator"
)

// Handler handles punishment policy HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates policy handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// List lists punishment rules
// GET /punishment-rules
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, rules)
}

// Create creates a punishment rule
// POST /punishment-rules
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rule, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMuteNeedsLength) {
			response.BadRequest(w, "Mute rules require a duration")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.Created(w, rule)
}

// Get returns one punishment rule
// GET /punishment-rules/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid rule ID")
		return
	}

	rule, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			response.NotFound(w, "Punishment rule not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, rule)
}

// Update updates a punishment rule
// PUT /punishment-rules/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid rule ID")
		return
	}

	var req UpdateRuleRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rule, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRuleNotFound):
			response.NotFound(w, "Punishment rule not found")
		case errors.Is(err, ErrMuteNeedsLength):
			response.BadRequest(w, "Mute rules require a duration")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, rule)
}

// Delete deletes a punishment rule
// DELETE /punishment-rules/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid rule ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			response.NotFound(w, "Punishment rule not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}
