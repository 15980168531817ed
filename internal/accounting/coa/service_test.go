package coa

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

type mockRepository struct {
	classes       map[int64]*Class
	accounts      map[int64]*Account
	nextClassID   int64
	nextAccountID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		classes:       make(map[int64]*Class),
		accounts:      make(map[int64]*Account),
		nextClassID:   1,
		nextAccountID: 1,
	}
}

func (m *mockRepository) CreateClass(_ context.Context, in Class) (Class, error) {
	for _, c := range m.classes {
		if c.Code == in.Code && c.TenantID == in.TenantID {
			return Class{}, shared.ErrDuplicateCode
		}
	}
	in.ID = m.nextClassID
	m.nextClassID++
	stored := in
	m.classes[in.ID] = &stored
	return in, nil
}

func (m *mockRepository) ListClasses(_ context.Context, tenantID int64) ([]Class, error) {
	var out []Class
	for _, c := range m.classes {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockRepository) CreateAccount(_ context.Context, in Account) (Account, error) {
	for _, a := range m.accounts {
		if a.Number == in.Number {
			return Account{}, shared.ErrDuplicateCode
		}
	}
	in.ID = m.nextAccountID
	in.Active = true
	m.nextAccountID++
	stored := in
	m.accounts[in.ID] = &stored
	return in, nil
}

func (m *mockRepository) DeactivateAccount(_ context.Context, accountID int64) error {
	a, ok := m.accounts[accountID]
	if !ok {
		return shared.ErrAccountNotFound
	}
	a.Active = false
	return nil
}

func (m *mockRepository) GetAccount(_ context.Context, accountID int64) (Account, error) {
	a, ok := m.accounts[accountID]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	return *a, nil
}

func (m *mockRepository) ListByClass(_ context.Context, classID int64) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if a.ClassID == classID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *mockRepository) ListByNumberPrefix(_ context.Context, _ int64, prefix string) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if strings.HasPrefix(a.Number, prefix) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func TestCreateClassValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateClass(ctx, Class{Code: "", Name: "Revenues", Kind: KindRevenue, Statement: StatementIncome})
	assert.Error(t, err)

	_, err = svc.CreateClass(ctx, Class{Code: "7", Name: "Revenues", Kind: "BOGUS", Statement: StatementIncome})
	assert.Error(t, err)

	created, err := svc.CreateClass(ctx, Class{Code: "7", Name: "Revenues", Kind: KindRevenue, Statement: StatementIncome, TenantID: 1})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = svc.CreateClass(ctx, Class{Code: "7", Name: "Again", Kind: KindRevenue, Statement: StatementIncome, TenantID: 1})
	assert.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestDeactivatePreservesAccount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	class, err := svc.CreateClass(ctx, Class{Code: "5", Name: "Financial", Kind: KindAsset, Statement: StatementBalance, TenantID: 1})
	require.NoError(t, err)

	acc, err := svc.CreateAccount(ctx, Account{Number: "531", Name: "Caisse", ClassID: class.ID})
	require.NoError(t, err)
	assert.True(t, acc.Active)

	require.NoError(t, svc.Deactivate(ctx, acc.ID))

	got, err := svc.Get(ctx, acc.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, svc.Deactivate(ctx, 999), shared.ErrAccountNotFound)
}

func TestListByNumberPrefixSorted(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	class, err := svc.CreateClass(ctx, Class{Code: "5", Name: "Financial", Kind: KindAsset, Statement: StatementBalance, TenantID: 1})
	require.NoError(t, err)

	for _, n := range []string{"532", "512", "531"} {
		_, err := svc.CreateAccount(ctx, Account{Number: n, Name: "A" + n, ClassID: class.ID})
		require.NoError(t, err)
	}

	accounts, err := svc.ListByNumberPrefix(ctx, 1, "5")
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "512", accounts[0].Number)
	assert.Equal(t, "531", accounts[1].Number)
	assert.Equal(t, "532", accounts[2].Number)

	cash, err := svc.ListByNumberPrefix(ctx, 1, "53")
	require.NoError(t, err)
	assert.Len(t, cash, 2)
}
