package balances

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

type mockRepo struct {
	account      AccountBalance
	accountErr   error
	accountCalls int
	trial        []AccountBalance
	trialCalls   int
}

func (m *mockRepo) AccountBalance(ctx context.Context, accountID int64, filter Filter) (AccountBalance, error) {
	m.accountCalls++
	return m.account, m.accountErr
}

func (m *mockRepo) TrialBalance(ctx context.Context, filter Filter) ([]AccountBalance, error) {
	m.trialCalls++
	return m.trial, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(repo, NewCache(client, time.Minute))
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestGetAccountBalanceCaches(t *testing.T) {
	repo := &mockRepo{account: AccountBalance{
		AccountID: 3,
		Number:    "531",
		Name:      "Cash register",
		Debit:     decimal.RequireFromString("250"),
		Credit:    decimal.RequireFromString("100"),
		Balance:   decimal.RequireFromString("150"),
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	got, err := svc.GetAccountBalance(ctx, 3, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("expected balance 150 got %s", got.Balance)
	}
	if repo.accountCalls != 1 {
		t.Fatalf("expected 1 repo call, got %d", repo.accountCalls)
	}

	// Second read hits the cache.
	if _, err := svc.GetAccountBalance(ctx, 3, Filter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.accountCalls != 1 {
		t.Fatalf("expected cached result, repo called %d times", repo.accountCalls)
	}

	// Invalidation forces a reload on the next read.
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	repo.account.Balance = decimal.RequireFromString("90")
	got, err = svc.GetAccountBalance(ctx, 3, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("90")) {
		t.Fatalf("expected refreshed balance 90 got %s", got.Balance)
	}
	if repo.accountCalls != 2 {
		t.Fatalf("expected repo to refresh, calls %d", repo.accountCalls)
	}
}

func TestGetTrialBalanceKeyedByAsOf(t *testing.T) {
	repo := &mockRepo{trial: []AccountBalance{
		{AccountID: 1, Number: "531", Balance: decimal.RequireFromString("100")},
		{AccountID: 2, Number: "701", Balance: decimal.RequireFromString("-100")},
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.GetTrialBalance(ctx, Filter{TenantID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	asOf := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if _, err := svc.GetTrialBalance(ctx, Filter{TenantID: 1, AsOf: &asOf}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.trialCalls != 2 {
		t.Fatalf("distinct as_of filters must not share a cache entry, calls %d", repo.trialCalls)
	}
	if _, err := svc.GetTrialBalance(ctx, Filter{TenantID: 1, AsOf: &asOf}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.trialCalls != 2 {
		t.Fatalf("expected cached result, calls %d", repo.trialCalls)
	}
}

func TestVerifySolvencyBypassesCache(t *testing.T) {
	repo := &mockRepo{account: AccountBalance{AccountID: 1, Balance: decimal.RequireFromString("100")}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	if err := svc.VerifySolvency(ctx, 1, decimal.RequireFromString("80")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.VerifySolvency(ctx, 1, decimal.RequireFromString("100.01")); !errors.Is(err, shared.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	// Both reads must land on the repository.
	if repo.accountCalls != 2 {
		t.Fatalf("solvency reads must not use the cache, calls %d", repo.accountCalls)
	}
}

type entry struct {
	account       int64
	debit, credit decimal.Decimal
	ts            time.Time
}

// ledgerRepo applies the Repository aggregation contract to in-memory
// entries: accounts never vanish, entries outside the filter count as zero.
type ledgerRepo struct {
	accounts []AccountBalance
	entries  []entry
}

func (r *ledgerRepo) AccountBalance(_ context.Context, accountID int64, filter Filter) (AccountBalance, error) {
	for _, a := range r.accounts {
		if a.AccountID == accountID {
			return r.sum(a, filter), nil
		}
	}
	return AccountBalance{}, shared.ErrAccountNotFound
}

func (r *ledgerRepo) TrialBalance(_ context.Context, filter Filter) ([]AccountBalance, error) {
	out := make([]AccountBalance, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, r.sum(a, filter))
	}
	return out, nil
}

func (r *ledgerRepo) sum(a AccountBalance, filter Filter) AccountBalance {
	a.Debit, a.Credit = decimal.Zero, decimal.Zero
	for _, e := range r.entries {
		if e.account != a.AccountID {
			continue
		}
		if filter.AsOf != nil && e.ts.After(*filter.AsOf) {
			continue
		}
		a.Debit = a.Debit.Add(e.debit)
		a.Credit = a.Credit.Add(e.credit)
	}
	a.Balance = a.Debit.Sub(a.Credit)
	return a
}

func TestBalancesBeforeFirstActivityReportZero(t *testing.T) {
	posted := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	repo := &ledgerRepo{
		accounts: []AccountBalance{
			{AccountID: 1, Number: "531", Name: "Cash register"},
			{AccountID: 2, Number: "701", Name: "Medicine sales"},
		},
		entries: []entry{
			{account: 1, debit: decimal.RequireFromString("120"), ts: posted},
			{account: 2, credit: decimal.RequireFromString("120"), ts: posted},
		},
	}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	ctx := context.Background()

	asOf := posted.AddDate(0, -1, 0)
	got, err := svc.GetAccountBalance(ctx, 1, Filter{AsOf: &asOf})
	if err != nil {
		t.Fatalf("account with only later activity must still resolve: %v", err)
	}
	if !got.Balance.IsZero() || !got.Debit.IsZero() {
		t.Fatalf("expected a zero balance before first activity, got %s", got.Balance)
	}

	trial, err := svc.GetTrialBalance(ctx, Filter{TenantID: 1, AsOf: &asOf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trial) != 2 {
		t.Fatalf("idle accounts must stay in the trial balance, got %d rows", len(trial))
	}
	for _, b := range trial {
		if !b.Balance.IsZero() {
			t.Fatalf("account %s should be flat before first activity, got %s", b.Number, b.Balance)
		}
	}
}

func TestGetAccountBalanceUnknownAccount(t *testing.T) {
	repo := &mockRepo{accountErr: shared.ErrAccountNotFound}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	_, err := svc.GetAccountBalance(context.Background(), 99, Filter{})
	if !errors.Is(err, shared.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}
