package sales

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/posting"
	"github.com/pavilion-erp/pavilion-erp/internal/platform/httpx"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

type saleLineRequest struct {
	Name             string `json:"name" validate:"required"`
	Total            string `json:"total" validate:"required"`
	RevenueAccountID int64  `json:"revenue_account_id"`
}

type createSaleRequest struct {
	TenantID    int64             `json:"tenant_id" validate:"required"`
	POSID       int64             `json:"pos_id" validate:"required"`
	Label       string            `json:"label" validate:"required"`
	GrossTTC    string            `json:"gross_ttc" validate:"required"`
	VATRatePct  string            `json:"vat_rate_pct"`
	DiscountPct string            `json:"discount_pct"`
	Lines       []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type payRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required,oneof=cash bank card transfer mobile"`
	UserID int64  `json:"user_id" validate:"required"`
	POSID  int64  `json:"pos_id" validate:"required"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale := Sale{TenantID: req.TenantID, POSID: req.POSID, Label: req.Label}
	var err error
	if sale.GrossTTC, err = decimal.NewFromString(req.GrossTTC); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", "gross_ttc: "+err.Error())
		return
	}
	if sale.VATRatePct, err = parseOptionalDecimal(req.VATRatePct); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", "vat_rate_pct: "+err.Error())
		return
	}
	if sale.DiscountPct, err = parseOptionalDecimal(req.DiscountPct); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", "discount_pct: "+err.Error())
		return
	}
	for _, line := range req.Lines {
		total, err := decimal.NewFromString(line.Total)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", "line total: "+err.Error())
			return
		}
		sale.Lines = append(sale.Lines, SaleLine{
			Name:             line.Name,
			Total:            total,
			RevenueAccountID: line.RevenueAccountID,
		})
	}
	created, err := h.service.Create(r.Context(), sale)
	if err != nil {
		h.logger.Error("create sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	saleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale ID", "")
		return
	}
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", err.Error())
		return
	}
	res, err := h.service.Pay(r.Context(), posting.SalePaymentInput{
		SaleID: saleID,
		Amount: amount,
		Method: posting.Method(req.Method),
		UserID: req.UserID,
		POSID:  req.POSID,
	})
	if err != nil {
		h.logger.Error("pay sale", slog.Int64("sale_id", saleID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale ID", "")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID, _ := strconv.ParseInt(q.Get("tenant_id"), 10, 64)
	posID, _ := strconv.ParseInt(q.Get("pos_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	out, err := h.service.List(r.Context(), tenantID, posID, limit, offset)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale ID", "")
		return
	}
	payments, err := h.service.Payments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func parseOptionalDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
