package prompt

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/modwarden/warden-api/internal/pkg/response"
	"github.com/modwarden/warden-api/internal/pkg/validator"
)

type templateRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=128"`
	Content string `json:"content" validate:"required,min=1"`
}

// Handler handles prompt template HTTP requests
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes returns prompt template admin routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/activate", h.Activate)
	r.Delete("/{id}", h.Delete)

	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repo.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, templates)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	now := time.Now()
	t := &Template{
		ID:        uuid.New(),
		Name:      req.Name,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(r.Context(), t); err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid template ID")
		return
	}

	var req templateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	t := &Template{ID: id, Name: req.Name, Content: req.Content}
	if err := h.repo.Update(r.Context(), t); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			response.NotFound(w, "Prompt template not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, t)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid template ID")
		return
	}

	if err := h.repo.Activate(r.Context(), id); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			response.NotFound(w, "Prompt template not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"message": "Template activated"})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid template ID")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			response.NotFound(w, "Prompt template not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}
