// Package money fixes the numeric semantics for every monetary amount in the
// ledger: two stored fractional digits, half-even rounding, and the balance
// tolerance applied at journal finalisation.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tolerance is the largest debit/credit discrepancy treated as rounding noise.
// A journal is balanced iff |debits - credits| < Tolerance.
var Tolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Round rounds to two fractional digits, half-even.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Balanced reports whether debit and credit totals agree within Tolerance.
func Balanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThan(Tolerance)
}

// FromPercent converts a percentage (20 for 20%) to its fractional rate.
func FromPercent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// Store renders an amount for the SQL boundary, always with two decimals.
func Store(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var printer = message.NewPrinter(language.French)

// Format renders an amount for human-facing labels ("1 234,56").
func Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}
