package procurement

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Record)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/payments", h.Payments)
	r.Post("/{id}/payments", h.Pay)
}
