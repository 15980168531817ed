package expenses

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/posting"
)

// Poster is the slice of the posting service this module uses.
type Poster interface {
	PostExpense(ctx context.Context, in posting.ExpenseInput) (posting.Result, error)
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

// Record posts an expense. The poster owns the insert, the journal and the
// solvency check; failure leaves no trace of the expense.
func (s *Service) Record(ctx context.Context, in posting.ExpenseInput) (posting.Result, error) {
	if in.Type == "" {
		return posting.Result{}, errors.New("expenses: type required")
	}
	if in.Description == "" {
		return posting.Result{}, errors.New("expenses: description required")
	}
	if in.ExpenseAccountID == 0 {
		return posting.Result{}, errors.New("expenses: expense account required")
	}
	res, err := s.poster.PostExpense(ctx, in)
	if err != nil {
		return posting.Result{}, err
	}
	if err := s.invalidate.Invalidate(ctx); err != nil {
		s.logger.Warn("balance cache invalidation failed", slog.Any("error", err))
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Expense, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, tenantID, posID, limit, offset)
}
