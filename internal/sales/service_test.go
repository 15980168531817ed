package sales

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/posting"
)

type mockRepository struct {
	sales  map[int64]Sale
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{sales: map[int64]Sale{}}
}

func (m *mockRepository) Create(_ context.Context, sale Sale) (int64, error) {
	m.nextID++
	sale.ID = m.nextID
	m.sales[sale.ID] = sale
	return sale.ID, nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Sale, error) {
	return m.sales[id], nil
}

func (m *mockRepository) List(context.Context, int64, int64, int, int) ([]Sale, error) {
	return nil, nil
}

func (m *mockRepository) ListPayments(context.Context, int64) ([]Payment, error) {
	return nil, nil
}

type mockPoster struct {
	calls  int
	result posting.Result
	err    error
	last   posting.SalePaymentInput
}

func (m *mockPoster) PostSalePayment(_ context.Context, in posting.SalePaymentInput) (posting.Result, error) {
	m.calls++
	m.last = in
	return m.result, m.err
}

type mockInvalidator struct{ calls int }

func (m *mockInvalidator) Invalidate(context.Context) error {
	m.calls++
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(repo Repository, poster Poster, inv Invalidator) *Service {
	return NewService(repo, poster, inv, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateComputesNetBalanceDue(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockPoster{}, &mockInvalidator{})

	sale, err := svc.Create(context.Background(), Sale{
		TenantID: 1, POSID: 1, Label: "Bulk order",
		GrossTTC:    dec("1800"),
		VATRatePct:  dec("20"),
		DiscountPct: dec("10"),
		Lines: []SaleLine{
			{Name: "Antibiotics", Total: dec("1300")},
			{Name: "Dermo care", Total: dec("500")},
		},
	})
	require.NoError(t, err)
	assert.True(t, sale.BalanceDue.Equal(dec("1620")), "due %s", sale.BalanceDue)
	assert.False(t, sale.DiscountPosted)
}

func TestCreateRejectsLineSumMismatch(t *testing.T) {
	svc := newTestService(newMockRepository(), &mockPoster{}, &mockInvalidator{})

	_, err := svc.Create(context.Background(), Sale{
		TenantID: 1, POSID: 1, Label: "Broken",
		GrossTTC: dec("100"),
		Lines:    []SaleLine{{Name: "A", Total: dec("60")}, {Name: "B", Total: dec("30")}},
	})
	assert.Error(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMockRepository(), &mockPoster{}, &mockInvalidator{})
	ctx := context.Background()

	cases := []struct {
		name string
		sale Sale
	}{
		{"missing label", Sale{GrossTTC: dec("10"), Lines: []SaleLine{{Name: "A", Total: dec("10")}}}},
		{"no lines", Sale{Label: "x", GrossTTC: dec("10")}},
		{"discount above hundred", Sale{Label: "x", GrossTTC: dec("10"), DiscountPct: dec("101"),
			Lines: []SaleLine{{Name: "A", Total: dec("10")}}}},
		{"negative vat", Sale{Label: "x", GrossTTC: dec("10"), VATRatePct: dec("-1"),
			Lines: []SaleLine{{Name: "A", Total: dec("10")}}}},
		{"zero amount line", Sale{Label: "x", GrossTTC: dec("10"),
			Lines: []SaleLine{{Name: "A", Total: dec("10")}, {Name: "B", Total: dec("0")}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.sale)
			assert.Error(t, err)
		})
	}
}

func TestCreateToleratesCentGap(t *testing.T) {
	svc := newTestService(newMockRepository(), &mockPoster{}, &mockInvalidator{})

	// Lines within half a cent of the gross pass.
	_, err := svc.Create(context.Background(), Sale{
		TenantID: 1, POSID: 1, Label: "Rounded",
		GrossTTC: dec("100"),
		Lines: []SaleLine{
			{Name: "A", Total: dec("33.33")},
			{Name: "B", Total: dec("33.33")},
			{Name: "C", Total: dec("33.345")},
		},
	})
	assert.NoError(t, err)
}

func TestPayDelegatesAndInvalidates(t *testing.T) {
	poster := &mockPoster{result: posting.Result{JournalID: 7, Outstanding: dec("0")}}
	inv := &mockInvalidator{}
	svc := newTestService(newMockRepository(), poster, inv)

	res, err := svc.Pay(context.Background(), posting.SalePaymentInput{
		SaleID: 3, Amount: dec("100"), Method: posting.MethodCash, UserID: 1, POSID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.JournalID)
	assert.Equal(t, 1, poster.calls)
	assert.Equal(t, int64(3), poster.last.SaleID)
	assert.Equal(t, 1, inv.calls, "successful posting must drop cached balances")
}

func TestPayDoesNotInvalidateOnFailure(t *testing.T) {
	poster := &mockPoster{err: assert.AnError}
	inv := &mockInvalidator{}
	svc := newTestService(newMockRepository(), poster, inv)

	_, err := svc.Pay(context.Background(), posting.SalePaymentInput{
		SaleID: 3, Amount: dec("100"), Method: posting.MethodCash, UserID: 1, POSID: 1,
	})
	assert.Error(t, err)
	assert.Zero(t, inv.calls)
}
