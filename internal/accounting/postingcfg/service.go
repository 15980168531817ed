package postingcfg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/coa"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// AccountReader is the slice of the chart of accounts this module needs
// to validate role assignments.
type AccountReader interface {
	Get(ctx context.Context, accountID int64) (coa.Account, error)
}

type Service struct {
	repo     Repository
	accounts AccountReader
	logger   *slog.Logger
}

func NewService(repo Repository, accounts AccountReader, logger *slog.Logger) *Service {
	return &Service{repo: repo, accounts: accounts, logger: logger}
}

// Get returns the configuration for one point of sale. An unconfigured
// point of sale is a configuration error, not an empty config.
func (s *Service) Get(ctx context.Context, posID int64) (Config, error) {
	return s.repo.Get(ctx, posID)
}

// SetRole assigns an account to a semantic role. The account must exist
// and be active; roles may be reassigned at any time and only affect
// future postings.
func (s *Service) SetRole(ctx context.Context, tenantID, posID int64, role Role, accountID int64) error {
	if _, ok := roleColumns[role]; !ok {
		return fmt.Errorf("postingcfg: unknown role %q", role)
	}
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.Active {
		return fmt.Errorf("%w: account %s is deactivated", shared.ErrConfiguration, account.Number)
	}
	if err := s.repo.SetRole(ctx, tenantID, posID, role, accountID); err != nil {
		return err
	}
	s.logger.Info("posting role assigned",
		slog.Int64("pos_id", posID),
		slog.String("role", string(role)),
		slog.String("account", account.Number))
	return nil
}
