package journals

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/money"
)

// HeaderInput groups the fields required to open a journal.
type HeaderInput struct {
	Timestamp       time.Time
	Label           string
	Amount          decimal.Decimal
	Kind            Kind
	Reference       string
	Description     string
	TenantID        int64
	UserID          int64
	SaleID          *int64
	CarriesDiscount bool
}

// Validate ensures header input meets minimum criteria.
func (in HeaderInput) Validate() error {
	if in.Label == "" {
		return errors.New("journals: label required")
	}
	if in.Reference == "" {
		return errors.New("journals: reference required")
	}
	switch in.Kind {
	case KindInflow, KindOutflow, KindTransfer:
	default:
		return fmt.Errorf("journals: unknown kind %q", in.Kind)
	}
	if in.Amount.IsNegative() {
		return errors.New("journals: negative gross amount")
	}
	return nil
}

// LineInput describes one entry line to append.
type LineInput struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Ordinal   int
	Label     string
}

// Validate enforces the single-sided line invariant.
func (in LineInput) Validate() error {
	if in.AccountID == 0 {
		return errors.New("journals: line missing account")
	}
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return errors.New("journals: negative line amount")
	}
	debit := in.Debit.IsPositive()
	credit := in.Credit.IsPositive()
	if debit == credit {
		return errors.New("journals: line must carry exactly one of debit or credit")
	}
	return nil
}

// SumLines totals debits and credits over a line set.
func SumLines(lines []Line) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Balanced reports whether the line set balances within the store tolerance.
func Balanced(lines []Line) bool {
	debit, credit := SumLines(lines)
	return money.Balanced(debit, credit)
}
