package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/modwarden/warden-api/internal/pkg/response"
	"github.com/modwarden/warden-api/internal/pkg/validator"
)

// Handler handles catalog HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates catalog handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// ListLevels lists warning levels with their rules
// GET /levels
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.ListLevelsWithRules(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, levels)
}

// CreateLevel creates a warning level
// POST /levels
func (h *Handler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req CreateLevelRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	level, err := h.service.CreateLevel(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrLevelNameTaken) {
			response.Conflict(w, "Warning level name already taken")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.Created(w, level)
}

// GetLevel returns one warning level
// GET /levels/{id}
func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid level ID")
		return
	}

	level, err := h.service.GetLevel(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLevelNotFound) {
			response.NotFound(w, "Warning level not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, level)
}

// UpdateLevel updates a warning level
// PUT /levels/{id}
func (h *Handler) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid level ID")
		return
	}

	var req UpdateLevelRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	level, err := h.service.UpdateLevel(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrLevelNotFound):
			response.NotFound(w, "Warning level not found")
		case errors.Is(err, ErrLevelNameTaken):
			response.Conflict(w, "Warning level name already taken")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, level)
}

// DeleteLevel deletes a warning level
// DELETE /levels/{id}
func (h *Handler) DeleteLevel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid level ID")
		return
	}

	if err := h.service.DeleteLevel(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrLevelNotFound):
			response.NotFound(w, "Warning level not found")
		case errors.Is(err, ErrLevelInUse):
			response.Conflict(w, "Warning level is referenced by warnings and cannot be deleted")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// ListRules lists the rules of a level
// GET /levels/{id}/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	levelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid level ID")
		return
	}

	rules, err := h.service.ListRules(r.Context(), levelID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, rules)
}

// CreateRule creates a rule
// POST /rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rule, err := h.service.CreateRule(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrLevelNotFound) {
			response.NotFound(w, "Warning level not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.Created(w, rule)
}

// UpdateRule updates a rule
// PUT /rules/{id}
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
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

	rule, err := h.service.UpdateRule(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			response.NotFound(w, "Rule not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, rule)
}

// ReorderRules applies a new rule order within a level
// PATCH /levels/{id}/rules/reorder
func (h *Handler) ReorderRules(w http.ResponseWriter, r *http.Request) {
	levelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid level ID")
		return
	}

	var req ReorderRulesRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rules, err := h.service.ReorderRules(r.Context(), levelID, &req)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, rules)
}

// DeleteRule deletes a rule
// DELETE /rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid rule ID")
		return
	}

	if err := h.service.DeleteRule(r.Context(), id); err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			response.NotFound(w, "Rule not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}
