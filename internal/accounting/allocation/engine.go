// Package allocation splits an incoming payment across revenue accounts,
// VAT, and discount, in proportion to the sale's line totals. The engine is
// pure and stateless; the posting service decides the first-payment branch
// from the sale's discount flag and owns the surrounding transaction.
package allocation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/money"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// Line is one sale item bound to a revenue account. Total is the TTC line
// total (unit price x quantity); AccountNumber is the snapshot taken at sale
// time and orders the credit lines.
type Line struct {
	Name          string
	Total         decimal.Decimal
	AccountID     int64
	AccountNumber string
}

// Sale carries the allocation inputs. GrossTTC is the stored total with tax
// BEFORE discount; the line totals must sum to it.
type Sale struct {
	GrossTTC       decimal.Decimal
	VATRatePct     decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountPosted bool
	Lines          []Line
}

// RevenueCredit is one grouped credit against a revenue account.
type RevenueCredit struct {
	AccountID     int64
	AccountNumber string
	Amount        decimal.Decimal
	Label         string
}

// Allocation is the balanced distribution of one payment:
//
//	sum(RevenueCredits) + VATCredit = CashDebit + DiscountDebit
type Allocation struct {
	RevenueCredits []RevenueCredit
	VATCredit      decimal.Decimal
	DiscountDebit  decimal.Decimal
	CashDebit      decimal.Decimal
}

const labelLimit = 64

var one = decimal.NewFromInt(1)

// Compute distributes payment over the sale's revenue accounts.
//
// The gross of every line is TTC, so the VAT component of any distributed
// amount is rate/(1+rate) of it. On the first posting of a discounted sale
// the distributable amount is payment plus the full discount, so revenue
// accounts see their undiscounted share and the discount account takes a
// compensating debit. Credits are computed at full precision, rounded
// half-even to two digits, and the last credit line absorbs the rounding
// residual so the journal balances exactly.
func Compute(sale Sale, payment decimal.Decimal) (Allocation, error) {
	if payment.IsNegative() {
		return Allocation{}, errors.New("allocation: negative payment")
	}
	alloc := Allocation{
		CashDebit:     money.Round(payment),
		VATCredit:     decimal.Zero,
		DiscountDebit: decimal.Zero,
	}

	// Degenerate free sale: only the cash debit is written.
	if sale.GrossTTC.IsZero() {
		return alloc, nil
	}

	lineSum := decimal.Zero
	for _, line := range sale.Lines {
		if line.AccountID == 0 {
			return Allocation{}, fmt.Errorf("%w: sale line %q has no revenue account", shared.ErrConfiguration, line.Name)
		}
		lineSum = lineSum.Add(line.Total)
	}
	if !money.Balanced(lineSum, sale.GrossTTC) {
		return Allocation{}, fmt.Errorf("allocation: line totals %s do not sum to stored gross %s",
			lineSum.StringFixed(2), sale.GrossTTC.StringFixed(2))
	}

	if !sale.DiscountPosted && sale.DiscountPct.IsPositive() {
		alloc.DiscountDebit = money.Round(sale.GrossTTC.Mul(money.FromPercent(sale.DiscountPct)))
	}
	distributable := alloc.CashDebit.Add(alloc.DiscountDebit)

	vatRaw := decimal.Zero
	rate := money.FromPercent(sale.VATRatePct)
	if rate.IsPositive() {
		vatRaw = distributable.Mul(rate).Div(one.Add(rate))
	}
	pool := distributable.Sub(vatRaw)

	credits := group(sale.Lines)
	creditSum := decimal.Zero
	for i := range credits {
		raw := pool.Mul(credits[i].Amount).Div(sale.GrossTTC)
		credits[i].Amount = money.Round(raw)
		creditSum = creditSum.Add(credits[i].Amount)
	}
	alloc.VATCredit = money.Round(vatRaw)

	// The last-written credit absorbs the residual: the VAT line when
	// present, otherwise the final revenue credit.
	residual := distributable.Sub(creditSum.Add(alloc.VATCredit))
	if !residual.IsZero() {
		if alloc.VATCredit.IsPositive() {
			alloc.VATCredit = alloc.VATCredit.Add(residual)
		} else if len(credits) > 0 {
			credits[len(credits)-1].Amount = credits[len(credits)-1].Amount.Add(residual)
		}
	}

	alloc.RevenueCredits = credits
	return alloc, nil
}

// group collapses lines sharing a revenue account into one credit carrying
// the summed total and the contributing item names, ordered by account
// number ascending.
func group(lines []Line) []RevenueCredit {
	byAccount := make(map[int64]*RevenueCredit)
	names := make(map[int64][]string)
	var order []int64
	for _, line := range lines {
		credit, ok := byAccount[line.AccountID]
		if !ok {
			credit = &RevenueCredit{AccountID: line.AccountID, AccountNumber: line.AccountNumber, Amount: decimal.Zero}
			byAccount[line.AccountID] = credit
			order = append(order, line.AccountID)
		}
		credit.Amount = credit.Amount.Add(line.Total)
		if line.Name != "" {
			names[line.AccountID] = append(names[line.AccountID], line.Name)
		}
	}
	out := make([]RevenueCredit, 0, len(order))
	for _, id := range order {
		credit := *byAccount[id]
		credit.Label = truncate(strings.Join(names[id], ", "))
		out = append(out, credit)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountNumber != out[j].AccountNumber {
			return out[i].AccountNumber < out[j].AccountNumber
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

// truncate cuts on a rune boundary so accented item names never yield
// invalid UTF-8 in the journal label.
func truncate(s string) string {
	if len(s) <= labelLimit {
		return s
	}
	cut := labelLimit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
