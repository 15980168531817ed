package postingcfg

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/coa"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

type mockRepository struct {
	config  Config
	getErr  error
	setErr  error
	lastSet struct {
		role      Role
		accountID int64
	}
}

func (m *mockRepository) Get(context.Context, int64) (Config, error) {
	return m.config, m.getErr
}

func (m *mockRepository) SetRole(_ context.Context, _, _ int64, role Role, accountID int64) error {
	m.lastSet.role = role
	m.lastSet.accountID = accountID
	return m.setErr
}

type mockAccounts struct {
	accounts map[int64]coa.Account
}

func (m *mockAccounts) Get(_ context.Context, accountID int64) (coa.Account, error) {
	account, ok := m.accounts[accountID]
	if !ok {
		return coa.Account{}, shared.ErrAccountNotFound
	}
	return account, nil
}

func newTestService(repo *mockRepository, accounts *mockAccounts) *Service {
	return NewService(repo, accounts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSetRole(t *testing.T) {
	repo := &mockRepository{}
	accounts := &mockAccounts{accounts: map[int64]coa.Account{
		5: {ID: 5, Number: "531", Active: true},
	}}
	svc := newTestService(repo, accounts)

	err := svc.SetRole(context.Background(), 1, 1, RoleCash, 5)
	require.NoError(t, err)
	assert.Equal(t, RoleCash, repo.lastSet.role)
	assert.Equal(t, int64(5), repo.lastSet.accountID)
}

func TestSetRoleUnknownRole(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockAccounts{})

	err := svc.SetRole(context.Background(), 1, 1, Role("petty_cash"), 5)
	assert.Error(t, err)
}

func TestSetRoleUnknownAccount(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockAccounts{accounts: map[int64]coa.Account{}})

	err := svc.SetRole(context.Background(), 1, 1, RoleCash, 99)
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestSetRoleDeactivatedAccount(t *testing.T) {
	accounts := &mockAccounts{accounts: map[int64]coa.Account{
		5: {ID: 5, Number: "531", Active: false},
	}}
	svc := newTestService(&mockRepository{}, accounts)

	err := svc.SetRole(context.Background(), 1, 1, RoleCash, 5)
	assert.ErrorIs(t, err, shared.ErrConfiguration)
}

func TestGetUnconfiguredPOS(t *testing.T) {
	repo := &mockRepository{getErr: shared.ErrConfiguration}
	svc := newTestService(repo, &mockAccounts{})

	_, err := svc.Get(context.Background(), 9)
	assert.ErrorIs(t, err, shared.ErrConfiguration)
}
