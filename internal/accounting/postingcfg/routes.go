package postingcfg

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{posID}", h.Get)
	r.Put("/{posID}/roles", h.SetRole)
}
