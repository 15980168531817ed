package coa

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

type createClassRequest struct {
	Code      string `json:"code" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=ASSET LIABILITY EXPENSE REVENUE"`
	Statement string `json:"statement" validate:"required,oneof=BALANCE INCOME"`
	TenantID  int64  `json:"tenant_id" validate:"required"`
}

type createAccountRequest struct {
	Number  string `json:"number" validate:"required"`
	Name    string `json:"name" validate:"required"`
	ClassID int64  `json:"class_id" validate:"required"`
}

func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	class, err := h.service.CreateClass(r.Context(), Class{
		Code:      req.Code,
		Name:      req.Name,
		Kind:      ClassKind(req.Kind),
		Statement: Statement(req.Statement),
		TenantID:  req.TenantID,
	})
	if err != nil {
		h.logger.Error("create class", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, class)
}

func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := strconv.ParseInt(r.URL.Query().Get("tenant_id"), 10, 64)
	classes, err := h.service.ListClasses(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("list classes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, classes)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.CreateAccount(r.Context(), Account{
		Number:  req.Number,
		Name:    req.Name,
		ClassID: req.ClassID,
	})
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Account ID", "")
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.logger.Error("deactivate account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if classID, err := strconv.ParseInt(q.Get("class_id"), 10, 64); err == nil && classID > 0 {
		accounts, err := h.service.ListByClass(r.Context(), classID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, accounts)
		return
	}
	tenantID, _ := strconv.ParseInt(q.Get("tenant_id"), 10, 64)
	accounts, err := h.service.ListByNumberPrefix(r.Context(), tenantID, q.Get("prefix"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}
