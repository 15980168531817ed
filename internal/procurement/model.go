package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a supplier liability. Recording it posts the recognition
// journal; supplier payments settle BalanceDue over time.
type Purchase struct {
	ID           int64           `json:"id"`
	TenantID     int64           `json:"tenant_id"`
	POSID        int64           `json:"pos_id"`
	SupplierName string          `json:"supplier_name"`
	Total        decimal.Decimal `json:"total"`
	BalanceDue   decimal.Decimal `json:"balance_due"`
	JournalID    *int64          `json:"journal_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Lines        []PurchaseLine  `json:"lines,omitempty"`
}

type PurchaseLine struct {
	ID          int64           `json:"id"`
	PurchaseID  int64           `json:"purchase_id"`
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	AccountID   int64           `json:"account_id,omitempty"`
}

// SupplierPayment is a recorded settlement against a purchase.
type SupplierPayment struct {
	ID         int64           `json:"id"`
	PurchaseID int64           `json:"purchase_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	JournalID  *int64          `json:"journal_id,omitempty"`
	UserID     int64           `json:"user_id"`
	CreatedAt  time.Time       `json:"created_at"`
}
