package expenses

import (
	"encoding/json"
	"errors"
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

type recordRequest struct {
	TenantID         int64  `json:"tenant_id" validate:"required"`
	POSID            int64  `json:"pos_id" validate:"required"`
	Type             string `json:"type" validate:"required"`
	Description      string `json:"description" validate:"required"`
	Amount           string `json:"amount" validate:"required"`
	VATAmount        string `json:"vat_amount"`
	SupplierName     string `json:"supplier_name"`
	InvoiceRef       string `json:"invoice_ref"`
	ExpenseAccountID int64  `json:"expense_account_id" validate:"required"`
	Method           string `json:"method" validate:"required,oneof=cash bank card transfer mobile"`
	UserID           int64  `json:"user_id" validate:"required"`
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
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
	vat := decimal.Zero
	if req.VATAmount != "" {
		if vat, err = decimal.NewFromString(req.VATAmount); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", "vat_amount: "+err.Error())
			return
		}
	}
	res, err := h.service.Record(r.Context(), posting.ExpenseInput{
		Type:             req.Type,
		Description:      req.Description,
		Amount:           amount,
		VATAmount:        vat,
		SupplierName:     req.SupplierName,
		InvoiceRef:       req.InvoiceRef,
		ExpenseAccountID: req.ExpenseAccountID,
		Method:           posting.Method(req.Method),
		TenantID:         req.TenantID,
		POSID:            req.POSID,
		UserID:           req.UserID,
	})
	if err != nil {
		h.logger.Error("record expense", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Expense ID", "")
		return
	}
	expense, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Expense Not Found", "")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
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
