package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/balances"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/coa"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/journals"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/postingcfg"
	"github.com/pavilion-erp/pavilion-erp/internal/expenses"
	"github.com/pavilion-erp/pavilion-erp/internal/platform/httpx"
	"github.com/pavilion-erp/pavilion-erp/internal/procurement"
	"github.com/pavilion-erp/pavilion-erp/internal/sales"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	COAHandler         *coa.Handler
	ConfigHandler      *postingcfg.Handler
	JournalsHandler    *journals.Handler
	BalancesHandler    *balances.Handler
	SalesHandler       *sales.Handler
	ExpensesHandler    *expenses.Handler
	ProcurementHandler *procurement.Handler
}

// NewRouter constructs the chi.Router with Pavilion defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/coa", params.COAHandler.MountRoutes)
		r.Route("/posting-config", params.ConfigHandler.MountRoutes)
		r.Route("/journals", params.JournalsHandler.MountRoutes)
		r.Route("/balances", params.BalancesHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/expenses", params.ExpensesHandler.MountRoutes)
		r.Route("/purchases", params.ProcurementHandler.MountRoutes)
	})

	return r
}
