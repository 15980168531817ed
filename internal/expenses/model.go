package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a recorded outflow. The poster inserts the row and its
// journal inside one transaction; this module reads them back.
type Expense struct {
	ID               int64           `json:"id"`
	TenantID         int64           `json:"tenant_id"`
	POSID            int64           `json:"pos_id"`
	Type             string          `json:"type"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	SupplierName     string          `json:"supplier_name,omitempty"`
	InvoiceRef       string          `json:"invoice_ref,omitempty"`
	ExpenseAccountID int64           `json:"expense_account_id"`
	JournalID        *int64          `json:"journal_id,omitempty"`
	UserID           int64           `json:"user_id"`
	CreatedAt        time.Time       `json:"created_at"`
}
