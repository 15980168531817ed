package balances

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial", h.Trial)
	r.Get("/accounts/{id}", h.GetAccount)
}
