package procurement

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

type purchaseLineRequest struct {
	Description string `json:"description" validate:"required"`
	Total       string `json:"total" validate:"required"`
	AccountID   int64  `json:"account_id"`
}

type recordPurchaseRequest struct {
	TenantID     int64                 `json:"tenant_id" validate:"required"`
	POSID        int64                 `json:"pos_id" validate:"required"`
	SupplierName string                `json:"supplier_name" validate:"required"`
	Lines        []purchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
	UserID       int64                 `json:"user_id" validate:"required"`
}

type payPurchaseRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required,oneof=cash bank card transfer mobile"`
	POSID  int64  `json:"pos_id" validate:"required"`
	UserID int64  `json:"user_id" validate:"required"`
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := posting.PurchaseInput{
		SupplierName: req.SupplierName,
		TenantID:     req.TenantID,
		POSID:        req.POSID,
		UserID:       req.UserID,
	}
	for _, line := range req.Lines {
		total, err := decimal.NewFromString(line.Total)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", "line total: "+err.Error())
			return
		}
		in.Lines = append(in.Lines, posting.PurchaseLineInput{
			Description: line.Description,
			Total:       total,
			AccountID:   line.AccountID,
		})
	}
	res, err := h.service.Record(r.Context(), in)
	if err != nil {
		h.logger.Error("record purchase", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Purchase ID", "")
		return
	}
	var req payPurchaseRequest
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
	res, err := h.service.Pay(r.Context(), posting.PurchasePaymentInput{
		PurchaseID: purchaseID,
		Amount:     amount,
		Method:     posting.Method(req.Method),
		POSID:      req.POSID,
		UserID:     req.UserID,
	})
	if err != nil {
		h.logger.Error("pay purchase", slog.Int64("purchase_id", purchaseID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Purchase ID", "")
		return
	}
	purchase, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchase)
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
		httpx.Problem(w, http.StatusBadRequest, "Invalid Purchase ID", "")
		return
	}
	payments, err := h.service.Payments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}
