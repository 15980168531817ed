package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Purchase, error)
	List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Purchase, error)
	ListPayments(ctx context.Context, purchaseID int64) ([]SupplierPayment, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id int64) (Purchase, error) {
	var p Purchase
	var total, balance string
	err := r.db.QueryRow(ctx, `SELECT id, tenant_id, pos_id, supplier_name, total::text, balance_due::text,
journal_id, created_at FROM purchases WHERE id=$1`, id).
		Scan(&p.ID, &p.TenantID, &p.POSID, &p.SupplierName, &total, &balance, &p.JournalID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Purchase{}, shared.ErrPurchaseNotFound
		}
		return Purchase{}, err
	}
	if p.Total, err = decimal.NewFromString(total); err != nil {
		return Purchase{}, err
	}
	if p.BalanceDue, err = decimal.NewFromString(balance); err != nil {
		return Purchase{}, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, purchase_id, description, total::text, account_id
FROM purchase_lines WHERE purchase_id=$1 ORDER BY id`, id)
	if err != nil {
		return Purchase{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line PurchaseLine
		var lineTotal string
		var account *int64
		if err := rows.Scan(&line.ID, &line.PurchaseID, &line.Description, &lineTotal, &account); err != nil {
			return Purchase{}, err
		}
		if line.Total, err = decimal.NewFromString(lineTotal); err != nil {
			return Purchase{}, err
		}
		if account != nil {
			line.AccountID = *account
		}
		p.Lines = append(p.Lines, line)
	}
	return p, rows.Err()
}

func (r *repository) List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Purchase, error) {
	rows, err := r.db.Query(ctx, `SELECT id, tenant_id, pos_id, supplier_name, total::text, balance_due::text,
journal_id, created_at FROM purchases
WHERE tenant_id=$1 AND ($2::bigint = 0 OR pos_id=$2)
ORDER BY id DESC LIMIT $3 OFFSET $4`, tenantID, posID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		var total, balance string
		if err := rows.Scan(&p.ID, &p.TenantID, &p.POSID, &p.SupplierName, &total, &balance,
			&p.JournalID, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		if p.BalanceDue, err = decimal.NewFromString(balance); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) ListPayments(ctx context.Context, purchaseID int64) ([]SupplierPayment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, purchase_id, amount::text, method, journal_id, user_id, created_at
FROM supplier_payments WHERE purchase_id=$1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupplierPayment
	for rows.Next() {
		var p SupplierPayment
		var amount string
		if err := rows.Scan(&p.ID, &p.PurchaseID, &amount, &p.Method, &p.JournalID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
