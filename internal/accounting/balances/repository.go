package balances

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// Repository reads aggregated balances. Only finalised journals count;
// open journals are invisible to every balance. An account whose entries
// all fall outside the filter reports zeros rather than disappearing, so
// an as_of predating any activity still yields a row per account.
type Repository interface {
	AccountBalance(ctx context.Context, accountID int64, filter Filter) (AccountBalance, error)
	TrialBalance(ctx context.Context, filter Filter) ([]AccountBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) AccountBalance(ctx context.Context, accountID int64, filter Filter) (AccountBalance, error) {
	var b AccountBalance
	var debit, credit, balance string
	err := r.db.QueryRow(ctx, `SELECT a.id, a.number, a.name,
	COALESCE(SUM(e.debit),0)::text,
	COALESCE(SUM(e.credit),0)::text,
	(COALESCE(SUM(e.debit),0) - COALESCE(SUM(e.credit),0))::text
FROM accounts a
LEFT JOIN (journal_entries e
	JOIN journals j ON j.id = e.journal_id
		AND j.finalised
		AND ($2::timestamptz IS NULL OR j.ts <= $2))
	ON e.account_id = a.id
WHERE a.id = $1
GROUP BY a.id, a.number, a.name`, accountID, filter.AsOf).
		Scan(&b.AccountID, &b.Number, &b.Name, &debit, &credit, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountBalance{}, shared.ErrAccountNotFound
		}
		return AccountBalance{}, err
	}
	if b.Debit, err = decimal.NewFromString(debit); err != nil {
		return AccountBalance{}, err
	}
	if b.Credit, err = decimal.NewFromString(credit); err != nil {
		return AccountBalance{}, err
	}
	if b.Balance, err = decimal.NewFromString(balance); err != nil {
		return AccountBalance{}, err
	}
	return b, nil
}

func (r *repository) TrialBalance(ctx context.Context, filter Filter) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.number, a.name,
	COALESCE(SUM(e.debit),0)::text,
	COALESCE(SUM(e.credit),0)::text,
	(COALESCE(SUM(e.debit),0) - COALESCE(SUM(e.credit),0))::text
FROM accounts a
LEFT JOIN (journal_entries e
	JOIN journals j ON j.id = e.journal_id
		AND j.tenant_id = $1
		AND j.finalised
		AND ($2::timestamptz IS NULL OR j.ts <= $2))
	ON e.account_id = a.id
GROUP BY a.id, a.number, a.name
ORDER BY a.number`, filter.TenantID, filter.AsOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AccountBalance
	for rows.Next() {
		var b AccountBalance
		var debit, credit, balance string
		if err := rows.Scan(&b.AccountID, &b.Number, &b.Name, &debit, &credit, &balance); err != nil {
			return nil, err
		}
		if b.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, err
		}
		if b.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, err
		}
		if b.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
