package journals

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository exposes read access to posted journals.
type Repository interface {
	List(ctx context.Context, tenantID int64, limit, offset int) ([]Journal, error)
	Get(ctx context.Context, journalID int64) (Journal, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, tenantID int64, limit, offset int) ([]Journal, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT id, ts, label, amount::text, kind, reference, description,
tenant_id, user_id, sale_id, carries_discount, finalised, reversed_by, created_at
FROM journals WHERE tenant_id=$1 ORDER BY id DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Journal
	for rows.Next() {
		var j Journal
		var amountText string
		err := rows.Scan(&j.ID, &j.Timestamp, &j.Label, &amountText, &j.Kind, &j.Reference, &j.Description,
			&j.TenantID, &j.UserID, &j.SaleID, &j.CarriesDiscount, &j.Finalised, &j.ReversedBy, &j.CreatedAt)
		if err != nil {
			return nil, err
		}
		if j.Amount, err = decimal.NewFromString(amountText); err != nil {
			return nil, err
		}
		entries = append(entries, j)
	}
	return entries, rows.Err()
}

func (r *repository) Get(ctx context.Context, journalID int64) (Journal, error) {
	return GetWithLines(ctx, r.db, journalID)
}
