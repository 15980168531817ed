package postingcfg

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

type setRoleRequest struct {
	TenantID  int64  `json:"tenant_id" validate:"required"`
	Role      string `json:"role" validate:"required"`
	AccountID int64  `json:"account_id" validate:"required"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	posID, err := strconv.ParseInt(chi.URLParam(r, "posID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid POS ID", "")
		return
	}
	cfg, err := h.service.Get(r.Context(), posID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	posID, err := strconv.ParseInt(chi.URLParam(r, "posID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid POS ID", "")
		return
	}
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SetRole(r.Context(), req.TenantID, posID, Role(req.Role), req.AccountID); err != nil {
		h.logger.Error("set posting role",
			slog.Int64("pos_id", posID),
			slog.String("role", req.Role),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
