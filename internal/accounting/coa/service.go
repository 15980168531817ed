package coa

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateClass validates and stores a new account class.
func (s *Service) CreateClass(ctx context.Context, in Class) (Class, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" {
		return Class{}, errors.New("coa: class code and name required")
	}
	switch in.Kind {
	case KindAsset, KindLiability, KindExpense, KindRevenue:
	default:
		return Class{}, errors.New("coa: unknown class kind")
	}
	switch in.Statement {
	case StatementBalance, StatementIncome:
	default:
		return Class{}, errors.New("coa: unknown statement assignment")
	}
	return s.repo.CreateClass(ctx, in)
}

func (s *Service) ListClasses(ctx context.Context, tenantID int64) ([]Class, error) {
	return s.repo.ListClasses(ctx, tenantID)
}

// CreateAccount stores a new posting-eligible account under a class.
func (s *Service) CreateAccount(ctx context.Context, in Account) (Account, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Name = strings.TrimSpace(in.Name)
	if in.Number == "" || in.Name == "" {
		return Account{}, errors.New("coa: account number and name required")
	}
	if in.ClassID == 0 {
		return Account{}, errors.New("coa: owning class required")
	}
	return s.repo.CreateAccount(ctx, in)
}

// Deactivate hides an account from new postings while preserving history.
func (s *Service) Deactivate(ctx context.Context, accountID int64) error {
	return s.repo.DeactivateAccount(ctx, accountID)
}

func (s *Service) Get(ctx context.Context, accountID int64) (Account, error) {
	return s.repo.GetAccount(ctx, accountID)
}

func (s *Service) ListByClass(ctx context.Context, classID int64) ([]Account, error) {
	return s.repo.ListByClass(ctx, classID)
}

// ListByNumberPrefix lists accounts whose number starts with prefix,
// e.g. "5" for the cash and bank family.
func (s *Service) ListByNumberPrefix(ctx context.Context, tenantID int64, prefix string) ([]Account, error) {
	return s.repo.ListByNumberPrefix(ctx, tenantID, prefix)
}
