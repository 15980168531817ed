package balances

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// Service serves balance reads through the versioned cache. Writers call
// Invalidate after committing a posting so the next read refreshes.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetAccountBalance returns one account's aggregated balance.
func (s *Service) GetAccountBalance(ctx context.Context, accountID int64, filter Filter) (AccountBalance, error) {
	key, err := s.cache.Key(ctx, "balances", "account", strconv.FormatInt(accountID, 10), asOfToken(filter))
	if err != nil {
		return AccountBalance{}, err
	}
	var out AccountBalance
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.AccountBalance(ctx, accountID, filter)
	})
	return out, err
}

// GetTrialBalance returns every account's balance in account-number order.
func (s *Service) GetTrialBalance(ctx context.Context, filter Filter) ([]AccountBalance, error) {
	key, err := s.cache.Key(ctx, "balances", "trial", strconv.FormatInt(filter.TenantID, 10), asOfToken(filter))
	if err != nil {
		return nil, err
	}
	var out []AccountBalance
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.TrialBalance(ctx, filter)
	})
	return out, err
}

// VerifySolvency checks that an account's current balance covers amount.
// It always reads the repository directly; a stale cached balance must not
// approve an outflow.
func (s *Service) VerifySolvency(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	balance, err := s.repo.AccountBalance(ctx, accountID, Filter{})
	if err != nil {
		return err
	}
	if balance.Balance.LessThan(amount) {
		return shared.ErrInsufficientFunds
	}
	return nil
}

// Invalidate drops every cached balance. Call it after a posting commits.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func asOfToken(filter Filter) string {
	if filter.AsOf == nil {
		return "now"
	}
	return strconv.FormatInt(filter.AsOf.Unix(), 10)
}
