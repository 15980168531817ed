package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a point-of-sale ticket. GrossTTC is the with-tax total before
// discount; the lines sum to it. BalanceDue starts at the net payable
// (gross minus the rounded discount) and decreases with each payment.
type Sale struct {
	ID             int64           `json:"id"`
	TenantID       int64           `json:"tenant_id"`
	POSID          int64           `json:"pos_id"`
	Label          string          `json:"label"`
	GrossTTC       decimal.Decimal `json:"gross_ttc"`
	VATRatePct     decimal.Decimal `json:"vat_rate_pct"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	DiscountPosted bool            `json:"discount_posted"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Lines          []SaleLine      `json:"lines,omitempty"`
}

// SaleLine is one item of a sale. RevenueAccountID is the revenue account
// snapshot taken when the sale was recorded; zero means "use the
// sales_default role at posting time".
type SaleLine struct {
	ID               int64           `json:"id"`
	SaleID           int64           `json:"sale_id"`
	Name             string          `json:"name"`
	Total            decimal.Decimal `json:"total"`
	RevenueAccountID int64           `json:"revenue_account_id,omitempty"`
}

// Payment is a recorded settlement against a sale. Receipt is the
// customer-facing identifier printed on the till slip.
type Payment struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	Receipt   string          `json:"receipt"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	JournalID *int64          `json:"journal_id,omitempty"`
	UserID    int64           `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}
