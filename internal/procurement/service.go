package procurement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/posting"
)

// Poster is the slice of the posting service this module uses.
type Poster interface {
	PostPurchase(ctx context.Context, in posting.PurchaseInput) (posting.Result, error)
	PostPurchasePayment(ctx context.Context, in posting.PurchasePaymentInput) (posting.Result, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo       Repository
	poster     Poster
	invalidate Invalidator
	logger     *slog.Logger
}

func NewService(repo Repository, poster Poster, invalidate Invalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, invalidate: invalidate, logger: logger}
}

// Record registers a purchase and posts its liability journal.
func (s *Service) Record(ctx context.Context, in posting.PurchaseInput) (posting.Result, error) {
	if in.SupplierName == "" {
		return posting.Result{}, errors.New("procurement: supplier name required")
	}
	for _, line := range in.Lines {
		if line.Description == "" {
			return posting.Result{}, errors.New("procurement: line description required")
		}
	}
	res, err := s.poster.PostPurchase(ctx, in)
	if err != nil {
		return posting.Result{}, err
	}
	if err := s.invalidate.Invalidate(ctx); err != nil {
		s.logger.Warn("balance cache invalidation failed", slog.Any("error", err))
	}
	return res, nil
}

// Pay settles part of a purchase liability through the poster.
func (s *Service) Pay(ctx context.Context, in posting.PurchasePaymentInput) (posting.Result, error) {
	res, err := s.poster.PostPurchasePayment(ctx, in)
	if err != nil {
		return posting.Result{}, err
	}
	if err := s.invalidate.Invalidate(ctx); err != nil {
		s.logger.Warn("balance cache invalidation failed", slog.Any("error", err))
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Purchase, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, tenantID, posID, limit, offset)
}

func (s *Service) Payments(ctx context.Context, purchaseID int64) ([]SupplierPayment, error) {
	if _, err := s.repo.Get(ctx, purchaseID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, purchaseID)
}
