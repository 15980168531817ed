package journals

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies the cash direction of a journal.
type Kind string

const (
	KindInflow   Kind = "INFLOW"
	KindOutflow  Kind = "OUTFLOW"
	KindTransfer Kind = "TRANSFER"
)

// Journal is an immutable header grouping one business event's balanced
// ledger lines. After finalisation only a compensating reversal can touch it.
type Journal struct {
	ID          int64
	Timestamp   time.Time
	Label       string
	Amount      decimal.Decimal
	Kind        Kind
	Reference   string
	Description string
	TenantID    int64
	UserID      int64
	Finalised   bool
	// SaleID links inflow journals back to the sale they settle.
	SaleID *int64
	// CarriesDiscount marks the single journal that posted the sale's
	// discount debit; reversal uses it to clear the sale flag.
	CarriesDiscount bool
	ReversedBy      *int64
	CreatedAt       time.Time
	Lines           []Line
}

// Line is a single debit or credit row under one journal.
// Exactly one of Debit/Credit is positive.
type Line struct {
	ID        int64
	JournalID int64
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Ordinal   int
	Label     string
}
