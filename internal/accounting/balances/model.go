package balances

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance aggregates the finalised journal lines of one account.
// Balance is debit minus credit: positive for asset and expense accounts
// in their normal state, negative for revenue and liability accounts.
type AccountBalance struct {
	AccountID int64           `json:"account_id"`
	Number    string          `json:"number"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// Filter scopes a balance read. A nil AsOf means "now"; a set AsOf only
// counts journals stamped at or before it.
type Filter struct {
	TenantID int64
	AsOf     *time.Time
}
