package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	CreateClass(ctx context.Context, in Class) (Class, error)
	ListClasses(ctx context.Context, tenantID int64) ([]Class, error)
	CreateAccount(ctx context.Context, in Account) (Account, error)
	DeactivateAccount(ctx context.Context, accountID int64) error
	GetAccount(ctx context.Context, accountID int64) (Account, error)
	ListByClass(ctx context.Context, classID int64) ([]Account, error)
	ListByNumberPrefix(ctx context.Context, tenantID int64, prefix string) ([]Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CreateClass(ctx context.Context, in Class) (Class, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO account_classes (code, name, kind, statement, tenant_id)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at, updated_at`,
		in.Code, in.Name, in.Kind, in.Statement, in.TenantID)
	out := in
	if err := row.Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Class{}, mapUnique(err)
	}
	return out, nil
}

func (r *repository) ListClasses(ctx context.Context, tenantID int64) ([]Class, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, kind, statement, tenant_id, created_at, updated_at
FROM account_classes WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var classes []Class
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Kind, &c.Statement, &c.TenantID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *repository) CreateAccount(ctx context.Context, in Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (number, name, class_id, active)
VALUES ($1,$2,$3,TRUE) RETURNING id, active, created_at, updated_at`,
		in.Number, in.Name, in.ClassID)
	out := in
	if err := row.Scan(&out.ID, &out.Active, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Account{}, mapUnique(err)
	}
	return out, nil
}

func (r *repository) DeactivateAccount(ctx context.Context, accountID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET active=FALSE, updated_at=NOW() WHERE id=$1`, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) GetAccount(ctx context.Context, accountID int64) (Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, `SELECT id, number, name, class_id, active, created_at, updated_at
FROM accounts WHERE id=$1`, accountID).
		Scan(&a.ID, &a.Number, &a.Name, &a.ClassID, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) ListByClass(ctx context.Context, classID int64) ([]Account, error) {
	return r.list(ctx, `SELECT id, number, name, class_id, active, created_at, updated_at
FROM accounts WHERE class_id=$1 ORDER BY number`, classID)
}

func (r *repository) ListByNumberPrefix(ctx context.Context, tenantID int64, prefix string) ([]Account, error) {
	return r.list(ctx, `SELECT a.id, a.number, a.name, a.class_id, a.active, a.created_at, a.updated_at
FROM accounts a JOIN account_classes c ON c.id = a.class_id
WHERE c.tenant_id=$1 AND a.number LIKE $2 || '%' ORDER BY a.number`, tenantID, prefix)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Number, &a.Name, &a.ClassID, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicateCode
	}
	return err
}
