package posting

import (
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/journals"
)

// Method enumerates payment methods. Cash resolves to the cash role of the
// posting configuration; every other method settles through the bank role.
type Method string

const (
	MethodCash     Method = "cash"
	MethodBank     Method = "bank"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodMobile   Method = "mobile"
)

// SaleRecord is the poster's view of a sale, loaded under a row lock.
// GrossTTC is the with-tax total BEFORE discount; line totals sum to it.
type SaleRecord struct {
	ID             int64
	TenantID       int64
	POSID          int64
	Label          string
	GrossTTC       decimal.Decimal
	VATRatePct     decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountPosted bool
	BalanceDue     decimal.Decimal
	Lines          []SaleLineRecord
}

// SaleLineRecord carries the revenue-account snapshot taken at sale time.
// A zero RevenueAccountID falls back to the sales_default role.
type SaleLineRecord struct {
	Name             string
	Total            decimal.Decimal
	RevenueAccountID int64
}

// PurchaseRecord is the poster's view of a purchase order liability.
type PurchaseRecord struct {
	ID           int64
	TenantID     int64
	POSID        int64
	SupplierName string
	Total        decimal.Decimal
	BalanceDue   decimal.Decimal
}

// SalePaymentInput requests settlement of part of a sale.
type SalePaymentInput struct {
	SaleID int64
	Amount decimal.Decimal
	Method Method
	UserID int64
	POSID  int64
}

// ExpenseInput requests an expense outflow posting. VATAmount is the
// deductible VAT carried by the supplier invoice; it is split onto the
// vat_deductible role only when that role is configured.
type ExpenseInput struct {
	Type             string
	Description      string
	Amount           decimal.Decimal
	VATAmount        decimal.Decimal
	SupplierName     string
	InvoiceRef       string
	ExpenseAccountID int64
	Method           Method
	TenantID         int64
	POSID            int64
	UserID           int64
}

// PurchaseLineInput is one liability line of a purchase order.
// A zero AccountID falls back to the purchases_default role.
type PurchaseLineInput struct {
	Description string
	Total       decimal.Decimal
	AccountID   int64
}

// PurchaseInput records a supplier liability.
type PurchaseInput struct {
	SupplierName string
	Lines        []PurchaseLineInput
	TenantID     int64
	POSID        int64
	UserID       int64
}

// PurchasePaymentInput settles part of a purchase liability.
type PurchasePaymentInput struct {
	PurchaseID int64
	Amount     decimal.Decimal
	Method     Method
	POSID      int64
	UserID     int64
}

// Result reports a finalised posting back to the business module.
type Result struct {
	JournalID   int64
	Lines       []journals.Line
	Outstanding decimal.Decimal
}
