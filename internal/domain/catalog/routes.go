package catalog

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns catalog admin routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/levels", h.ListLevels)
	r.Post("/levels", h.CreateLevel)
	r.Get("/levels/{id}", h.GetLevel)
	r.Put("/levels/{id}", h.UpdateLevel)
	r.Delete("/levels/{id}", h.DeleteLevel)
	r.Get("/levels/{id}/rules", h.ListRules)
	r.Patch("/levels/{id}/rules/reorder", h.ReorderRules)

	r.Post("/rules", h.CreateRule)
	r.Put("/rules/{id}", h.UpdateRule)
	r.Delete("/rules/{id}", h.DeleteRule)

	return r
}
