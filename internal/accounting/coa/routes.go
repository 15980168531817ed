package coa

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/classes", h.ListClasses)
	r.Post("/classes", h.CreateClass)
	r.Get("/accounts", h.List)
	r.Post("/accounts", h.CreateAccount)
	r.Post("/accounts/{id}/deactivate", h.Deactivate)
}
