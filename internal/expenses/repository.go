package expenses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("expenses: not found")

type Repository interface {
	Get(ctx context.Context, id int64) (Expense, error)
	List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Expense, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectExpense = `SELECT id, tenant_id, pos_id, type, description, amount::text, vat_amount::text,
supplier_name, invoice_ref, expense_account_id, journal_id, user_id, created_at
FROM expenses`

func (r *repository) Get(ctx context.Context, id int64) (Expense, error) {
	row := r.db.QueryRow(ctx, selectExpense+` WHERE id=$1`, id)
	e, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, ErrNotFound
	}
	return e, err
}

func (r *repository) List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Expense, error) {
	rows, err := r.db.Query(ctx, selectExpense+` WHERE tenant_id=$1 AND ($2::bigint = 0 OR pos_id=$2)
ORDER BY id DESC LIMIT $3 OFFSET $4`, tenantID, posID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	var amount, vat string
	err := row.Scan(&e.ID, &e.TenantID, &e.POSID, &e.Type, &e.Description, &amount, &vat,
		&e.SupplierName, &e.InvoiceRef, &e.ExpenseAccountID, &e.JournalID, &e.UserID, &e.CreatedAt)
	if err != nil {
		return Expense{}, err
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return Expense{}, err
	}
	if e.VATAmount, err = decimal.NewFromString(vat); err != nil {
		return Expense{}, err
	}
	return e, nil
}
