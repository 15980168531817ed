package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/money"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/posting"
)

// Poster is the slice of the posting service the sales module uses.
type Poster interface {
	PostSalePayment(ctx context.Context, in posting.SalePaymentInput) (posting.Result, error)
}

// Invalidator drops cached balances after a posting commits.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service records sales and hands their settlements to the poster.
type Service struct {
	repo       Repository
	poster     Poster
	invalidate Invalidator
	logger     *slog.Logger
}

func NewService(repo Repository, poster Poster, invalidate Invalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, invalidate: invalidate, logger: logger}
}

var hundred = decimal.NewFromInt(100)

// Create validates and records a sale. Recording does not touch the
// ledger; journals appear only when payments arrive.
func (s *Service) Create(ctx context.Context, sale Sale) (Sale, error) {
	if sale.Label == "" {
		return Sale{}, errors.New("sales: label required")
	}
	if sale.GrossTTC.IsNegative() {
		return Sale{}, errors.New("sales: negative gross total")
	}
	if sale.DiscountPct.IsNegative() || sale.DiscountPct.GreaterThan(hundred) {
		return Sale{}, fmt.Errorf("sales: discount %s%% out of range", sale.DiscountPct)
	}
	if sale.VATRatePct.IsNegative() {
		return Sale{}, errors.New("sales: negative VAT rate")
	}
	if len(sale.Lines) == 0 {
		return Sale{}, errors.New("sales: at least one line required")
	}
	sum := decimal.Zero
	for _, line := range sale.Lines {
		if line.Name == "" {
			return Sale{}, errors.New("sales: line name required")
		}
		if !line.Total.IsPositive() {
			return Sale{}, fmt.Errorf("sales: line %q total must be positive", line.Name)
		}
		sum = sum.Add(line.Total)
	}
	if !money.Balanced(sum, sale.GrossTTC) {
		return Sale{}, fmt.Errorf("sales: lines sum to %s, gross is %s", sum, sale.GrossTTC)
	}

	discount := money.Round(sale.GrossTTC.Mul(sale.DiscountPct).Div(hundred))
	sale.BalanceDue = sale.GrossTTC.Sub(discount)
	sale.DiscountPosted = false

	id, err := s.repo.Create(ctx, sale)
	if err != nil {
		return Sale{}, err
	}
	s.logger.Info("sale recorded",
		slog.Int64("sale_id", id),
		slog.String("gross", sale.GrossTTC.StringFixed(2)),
		slog.String("due", sale.BalanceDue.StringFixed(2)))
	return s.repo.Get(ctx, id)
}

// Pay settles part of a sale through the poster and invalidates cached
// balances on success.
func (s *Service) Pay(ctx context.Context, in posting.SalePaymentInput) (posting.Result, error) {
	res, err := s.poster.PostSalePayment(ctx, in)
	if err != nil {
		return posting.Result{}, err
	}
	if err := s.invalidate.Invalidate(ctx); err != nil {
		// The posting is committed; stale cache entries expire on TTL.
		s.logger.Warn("balance cache invalidation failed", slog.Any("error", err))
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, tenantID, posID, limit, offset)
}

func (s *Service) Payments(ctx context.Context, saleID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, saleID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, saleID)
}
