package procurement

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

type mockRepository struct{}

func (mockRepository) Get(context.Context, int64) (Purchase, error) { return Purchase{}, nil }
func (mockRepository) List(context.Context, int64, int64, int, int) ([]Purchase, error) {
	return nil, nil
}
func (mockRepository) ListPayments(context.Context, int64) ([]SupplierPayment, error) {
	return nil, nil
}

type mockPoster struct {
	purchases int
	payments  int
	err       error
}

func (m *mockPoster) PostPurchase(context.Context, posting.PurchaseInput) (posting.Result, error) {
	m.purchases++
	return posting.Result{JournalID: 21}, m.err
}

func (m *mockPoster) PostPurchasePayment(context.Context, posting.PurchasePaymentInput) (posting.Result, error) {
	m.payments++
	return posting.Result{JournalID: 22}, m.err
}

type mockInvalidator struct{ calls int }

func (m *mockInvalidator) Invalidate(context.Context) error {
	m.calls++
	return nil
}

func newTestService(poster *mockPoster, inv *mockInvalidator) *Service {
	return NewService(mockRepository{}, poster, inv, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecordDelegatesToPoster(t *testing.T) {
	poster := &mockPoster{}
	inv := &mockInvalidator{}
	svc := newTestService(poster, inv)

	res, err := svc.Record(context.Background(), posting.PurchaseInput{
		SupplierName: "Pharma Dépôt",
		Lines:        []posting.PurchaseLineInput{{Description: "Gloves", Total: decimal.RequireFromString("200")}},
		TenantID:     1, POSID: 1, UserID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), res.JournalID)
	assert.Equal(t, 1, poster.purchases)
	assert.Equal(t, 1, inv.calls)
}

func TestRecordValidation(t *testing.T) {
	poster := &mockPoster{}
	svc := newTestService(poster, &mockInvalidator{})
	ctx := context.Background()

	_, err := svc.Record(ctx, posting.PurchaseInput{
		Lines: []posting.PurchaseLineInput{{Description: "Gloves", Total: decimal.RequireFromString("200")}},
	})
	assert.Error(t, err, "missing supplier name")

	_, err = svc.Record(ctx, posting.PurchaseInput{
		SupplierName: "Pharma Dépôt",
		Lines:        []posting.PurchaseLineInput{{Total: decimal.RequireFromString("200")}},
	})
	assert.Error(t, err, "missing line description")
	assert.Zero(t, poster.purchases)
}

func TestPayDelegatesAndInvalidates(t *testing.T) {
	poster := &mockPoster{}
	inv := &mockInvalidator{}
	svc := newTestService(poster, inv)

	res, err := svc.Pay(context.Background(), posting.PurchasePaymentInput{
		PurchaseID: 5, Amount: decimal.RequireFromString("100"),
		Method: posting.MethodBank, POSID: 1, UserID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(22), res.JournalID)
	assert.Equal(t, 1, poster.payments)
	assert.Equal(t, 1, inv.calls)
}

func TestPayDoesNotInvalidateOnFailure(t *testing.T) {
	poster := &mockPoster{err: assert.AnError}
	inv := &mockInvalidator{}
	svc := newTestService(poster, inv)

	_, err := svc.Pay(context.Background(), posting.PurchasePaymentInput{
		PurchaseID: 5, Amount: decimal.RequireFromString("100"),
		Method: posting.MethodBank, POSID: 1, UserID: 3,
	})
	assert.Error(t, err)
	assert.Zero(t, inv.calls)
}
