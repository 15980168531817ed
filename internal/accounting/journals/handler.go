package journals

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavilion-erp/pavilion-erp/internal/platform/httpx"
)

// Reverser emits a compensating journal for a finalised one.
// Implemented by the posting service, which owns the transaction.
type Reverser interface {
	Reverse(ctx context.Context, journalID, userID int64, reason string) (Journal, error)
}

type Handler struct {
	repo     Repository
	reverser Reverser
	logger   *slog.Logger
}

func NewHandler(logger *slog.Logger, repo Repository, reverser Reverser) *Handler {
	return &Handler{repo: repo, reverser: reverser, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID, _ := strconv.ParseInt(q.Get("tenant_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	entries, err := h.repo.List(r.Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Journal ID", "")
		return
	}
	entry, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

type reverseRequest struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Journal ID", "")
		return
	}
	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	reversal, err := h.reverser.Reverse(r.Context(), id, req.UserID, req.Reason)
	if err != nil {
		h.logger.Error("reverse journal", slog.Int64("journal_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reversal)
}
