package httpx

import (
	"errors"
	"net/http"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// ErrValidation marks request-shape failures surfaced by handlers.
var ErrValidation = errors.New("validation failed")

// RespondError maps domain errors to HTTP responses using RFC7807.
// Only this outermost layer translates accounting failures for callers;
// services and adapters propagate sentinels untouched.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrConfiguration):
		Problem(w, http.StatusUnprocessableEntity, "Posting Configuration Incomplete", err.Error())
	case errors.Is(err, shared.ErrOverpayment):
		Problem(w, http.StatusUnprocessableEntity, "Overpayment", err.Error())
	case errors.Is(err, shared.ErrInsufficientFunds):
		Problem(w, http.StatusUnprocessableEntity, "Insufficient Funds", err.Error())
	case errors.Is(err, shared.ErrAlreadyReversed):
		Problem(w, http.StatusConflict, "Already Reversed", err.Error())
	case errors.Is(err, shared.ErrFinalisedJournal):
		Problem(w, http.StatusConflict, "Journal Finalised", err.Error())
	case errors.Is(err, shared.ErrConcurrentDiscountPosting):
		Problem(w, http.StatusConflict, "Concurrent Discount Posting", err.Error())
	case errors.Is(err, shared.ErrDuplicateCode):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrJournalNotFound),
		errors.Is(err, shared.ErrAccountNotFound),
		errors.Is(err, shared.ErrSaleNotFound),
		errors.Is(err, shared.ErrPurchaseNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrUnbalancedJournal):
		// An unbalanced journal at finalisation is an engine bug, not a
		// caller mistake. The transaction has already rolled back.
		Problem(w, http.StatusInternalServerError, "Unbalanced Journal", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
