package allocation

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func eq(t *testing.T, want string, got decimal.Decimal, what string) {
	t.Helper()
	if !got.Equal(amt(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

// checkBalance asserts the allocation contract:
// sum(revenue credits) + vat = cash debit + discount debit.
func checkBalance(t *testing.T, a Allocation) {
	t.Helper()
	credits := a.VATCredit
	for _, c := range a.RevenueCredits {
		credits = credits.Add(c.Amount)
	}
	debits := a.CashDebit.Add(a.DiscountDebit)
	if !credits.Equal(debits) {
		t.Errorf("allocation does not balance: credits %s, debits %s", credits, debits)
	}
}

func TestSimpleCashSale(t *testing.T) {
	sale := Sale{
		GrossTTC: amt("100.00"),
		Lines:    []Line{{Name: "Location salle", Total: amt("100.00"), AccountID: 71, AccountNumber: "701"}},
	}
	a, err := Compute(sale, amt("100.00"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "100.00", a.CashDebit, "cash debit")
	eq(t, "0", a.VATCredit, "vat credit")
	eq(t, "0", a.DiscountDebit, "discount debit")
	if len(a.RevenueCredits) != 1 {
		t.Fatalf("expected 1 revenue credit, got %d", len(a.RevenueCredits))
	}
	eq(t, "100.00", a.RevenueCredits[0].Amount, "credit 701")
	checkBalance(t, a)
}

func TestSaleWithVAT(t *testing.T) {
	sale := Sale{
		GrossTTC:   amt("120.00"),
		VATRatePct: amt("20"),
		Lines:      []Line{{Total: amt("120.00"), AccountID: 71, AccountNumber: "701"}},
	}
	a, err := Compute(sale, amt("120.00"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "120.00", a.CashDebit, "cash debit")
	eq(t, "100.00", a.RevenueCredits[0].Amount, "credit 701")
	eq(t, "20.00", a.VATCredit, "credit 445")
	checkBalance(t, a)
}

func TestDiscountedSaleSinglePayment(t *testing.T) {
	sale := Sale{
		GrossTTC:    amt("1800.00"),
		VATRatePct:  amt("20"),
		DiscountPct: amt("10"),
		Lines: []Line{
			{Name: "Grande salle", Total: amt("1300.00"), AccountID: 71, AccountNumber: "701"},
			{Name: "Traiteur", Total: amt("500.00"), AccountID: 72, AccountNumber: "702"},
		},
	}
	a, err := Compute(sale, amt("1620.00"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "1620.00", a.CashDebit, "cash debit")
	eq(t, "180.00", a.DiscountDebit, "discount debit")
	// Distributable 1800.00: VAT carve-out 300.00, revenue pool 1500.00
	// split 13/18 and 5/18.
	eq(t, "1083.33", a.RevenueCredits[0].Amount, "credit 701")
	eq(t, "416.67", a.RevenueCredits[1].Amount, "credit 702")
	eq(t, "300.00", a.VATCredit, "credit 445")
	checkBalance(t, a)

	// Fully paid: revenue + VAT - discount = gross x (1 - d).
	net := a.RevenueCredits[0].Amount.Add(a.RevenueCredits[1].Amount).
		Add(a.VATCredit).Sub(a.DiscountDebit)
	eq(t, "1620.00", net, "net of fully paid sale")
}

func TestDiscountedSaleSplitPayments(t *testing.T) {
	sale := Sale{
		GrossTTC:    amt("1800.00"),
		VATRatePct:  amt("20"),
		DiscountPct: amt("10"),
		Lines: []Line{
			{Total: amt("1300.00"), AccountID: 71, AccountNumber: "701"},
			{Total: amt("500.00"), AccountID: 72, AccountNumber: "702"},
		},
	}

	first, err := Compute(sale, amt("810.00"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "180.00", first.DiscountDebit, "first payment discount debit")
	// Distributable 990.00: VAT 165.00, pool 825.00.
	eq(t, "595.83", first.RevenueCredits[0].Amount, "first credit 701")
	eq(t, "229.17", first.RevenueCredits[1].Amount, "first credit 702")
	eq(t, "165.00", first.VATCredit, "first credit 445")
	checkBalance(t, first)

	sale.DiscountPosted = true
	second, err := Compute(sale, amt("810.00"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "0", second.DiscountDebit, "second payment discount debit")
	// Distributable 810.00: VAT 135.00, pool 675.00.
	eq(t, "487.50", second.RevenueCredits[0].Amount, "second credit 701")
	eq(t, "187.50", second.RevenueCredits[1].Amount, "second credit 702")
	eq(t, "135.00", second.VATCredit, "second credit 445")
	checkBalance(t, second)
}

func TestZeroGrossFreeSale(t *testing.T) {
	a, err := Compute(Sale{GrossTTC: decimal.Zero}, amt("25.00"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "25.00", a.CashDebit, "cash debit")
	if len(a.RevenueCredits) != 0 {
		t.Errorf("expected no credit lines, got %d", len(a.RevenueCredits))
	}
	eq(t, "0", a.VATCredit, "vat credit")
	eq(t, "0", a.DiscountDebit, "discount debit")
}

func TestZeroDiscountNeverDebits(t *testing.T) {
	sale := Sale{
		GrossTTC: amt("50.00"),
		Lines:    []Line{{Total: amt("50.00"), AccountID: 71, AccountNumber: "701"}},
	}
	a, err := Compute(sale, amt("50.00"))
	if err != nil {
		t.Fatal(err)
	}
	if !a.DiscountDebit.IsZero() {
		t.Errorf("discount debit %s on an undiscounted sale", a.DiscountDebit)
	}
}

func TestGroupingCollapsesSameAccount(t *testing.T) {
	sale := Sale{
		GrossTTC: amt("90.00"),
		Lines: []Line{
			{Name: "Paracetamol", Total: amt("30.00"), AccountID: 71, AccountNumber: "701"},
			{Name: "Sirop", Total: amt("40.00"), AccountID: 71, AccountNumber: "701"},
			{Name: "Consultation", Total: amt("20.00"), AccountID: 76, AccountNumber: "706"},
		},
	}
	a, err := Compute(sale, amt("90.00"))
	if err != nil {
		t.Fatal(err)
	}
	if len(a.RevenueCredits) != 2 {
		t.Fatalf("expected 2 grouped credits, got %d", len(a.RevenueCredits))
	}
	eq(t, "70.00", a.RevenueCredits[0].Amount, "grouped credit 701")
	if a.RevenueCredits[0].Label != "Paracetamol, Sirop" {
		t.Errorf("unexpected grouped label %q", a.RevenueCredits[0].Label)
	}
	eq(t, "20.00", a.RevenueCredits[1].Amount, "credit 706")
	checkBalance(t, a)
}

func TestTruncatedLabelStaysValidUTF8(t *testing.T) {
	// The grouped label puts an accent right at the cut point.
	sale := Sale{
		GrossTTC: amt("90.00"),
		Lines: []Line{
			{Name: "Pommade reparatrice mains abimees hiver rigoureux", Total: amt("45.00"), AccountID: 71, AccountNumber: "701"},
			{Name: "Gélules échinacée concentrées", Total: amt("45.00"), AccountID: 71, AccountNumber: "701"},
		},
	}
	a, err := Compute(sale, amt("90.00"))
	if err != nil {
		t.Fatal(err)
	}
	label := a.RevenueCredits[0].Label
	if len(label) > labelLimit {
		t.Fatalf("label %q exceeds limit", label)
	}
	if !utf8.ValidString(label) {
		t.Fatalf("truncated label %q is not valid UTF-8", label)
	}
}

func TestCreditsOrderedByAccountNumber(t *testing.T) {
	sale := Sale{
		GrossTTC: amt("60.00"),
		Lines: []Line{
			{Total: amt("20.00"), AccountID: 79, AccountNumber: "708"},
			{Total: amt("40.00"), AccountID: 71, AccountNumber: "701"},
		},
	}
	a, err := Compute(sale, amt("60.00"))
	if err != nil {
		t.Fatal(err)
	}
	if a.RevenueCredits[0].AccountNumber != "701" || a.RevenueCredits[1].AccountNumber != "708" {
		t.Errorf("credits out of order: %s, %s", a.RevenueCredits[0].AccountNumber, a.RevenueCredits[1].AccountNumber)
	}
}

func TestResidualAbsorbedByLastRevenueCredit(t *testing.T) {
	sale := Sale{
		GrossTTC: amt("100.00"),
		Lines: []Line{
			{Total: amt("33.33"), AccountID: 71, AccountNumber: "701"},
			{Total: amt("33.33"), AccountID: 72, AccountNumber: "702"},
			{Total: amt("33.34"), AccountID: 73, AccountNumber: "703"},
		},
		DiscountPosted: true,
	}
	a, err := Compute(sale, amt("50.00"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "16.66", a.RevenueCredits[0].Amount, "credit 701")
	eq(t, "16.66", a.RevenueCredits[1].Amount, "credit 702")
	// 16.67 plus the 0.01 residual.
	eq(t, "16.68", a.RevenueCredits[2].Amount, "credit 703")
	checkBalance(t, a)
}

func TestResidualAbsorbedByVATCredit(t *testing.T) {
	sale := Sale{
		GrossTTC:   amt("100.00"),
		VATRatePct: amt("20"),
		Lines:      []Line{{Total: amt("100.00"), AccountID: 71, AccountNumber: "701"}},
	}
	a, err := Compute(sale, amt("33.33"))
	if err != nil {
		t.Fatal(err)
	}
	eq(t, "27.78", a.RevenueCredits[0].Amount, "credit 701")
	// Raw VAT 5.555 rounds to 5.56; the -0.01 residual lands here.
	eq(t, "5.55", a.VATCredit, "vat credit")
	checkBalance(t, a)
}

func TestLineWithoutAccountFails(t *testing.T) {
	sale := Sale{
		GrossTTC: amt("10.00"),
		Lines:    []Line{{Name: "Divers", Total: amt("10.00")}},
	}
	_, err := Compute(sale, amt("10.00"))
	if !errors.Is(err, shared.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLineSumMismatchFails(t *testing.T) {
	sale := Sale{
		GrossTTC: amt("100.00"),
		Lines:    []Line{{Total: amt("90.00"), AccountID: 71, AccountNumber: "701"}},
	}
	if _, err := Compute(sale, amt("100.00")); err == nil {
		t.Fatal("expected line-sum mismatch error")
	}
}

func TestNegativePaymentRejected(t *testing.T) {
	if _, err := Compute(Sale{GrossTTC: amt("10.00")}, amt("-1")); err == nil {
		t.Fatal("expected error for negative payment")
	}
}
