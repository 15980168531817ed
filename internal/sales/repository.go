package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/money"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

type Repository interface {
	Create(ctx context.Context, sale Sale) (int64, error)
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Sale, error)
	ListPayments(ctx context.Context, saleID int64) ([]Payment, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sale Sale) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `INSERT INTO sales
(tenant_id, pos_id, label, gross_ttc, vat_rate_pct, discount_pct, balance_due)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		sale.TenantID, sale.POSID, sale.Label, money.Store(sale.GrossTTC),
		sale.VATRatePct.String(), sale.DiscountPct.String(), money.Store(sale.BalanceDue)).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, line := range sale.Lines {
		var account any
		if line.RevenueAccountID != 0 {
			account = line.RevenueAccountID
		}
		if _, err := tx.Exec(ctx, `INSERT INTO sale_lines (sale_id, name, total, revenue_account_id)
VALUES ($1,$2,$3,$4)`, id, line.Name, money.Store(line.Total), account); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit(ctx)
}

func (r *repository) Get(ctx context.Context, id int64) (Sale, error) {
	var s Sale
	var gross, vat, discount, balance string
	err := r.db.QueryRow(ctx, `SELECT id, tenant_id, pos_id, label, gross_ttc::text, vat_rate_pct::text,
discount_pct::text, discount_posted, balance_due::text, created_at, updated_at
FROM sales WHERE id=$1`, id).
		Scan(&s.ID, &s.TenantID, &s.POSID, &s.Label, &gross, &vat, &discount,
			&s.DiscountPosted, &balance, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrSaleNotFound
		}
		return Sale{}, err
	}
	if s.GrossTTC, err = decimal.NewFromString(gross); err != nil {
		return Sale{}, err
	}
	if s.VATRatePct, err = decimal.NewFromString(vat); err != nil {
		return Sale{}, err
	}
	if s.DiscountPct, err = decimal.NewFromString(discount); err != nil {
		return Sale{}, err
	}
	if s.BalanceDue, err = decimal.NewFromString(balance); err != nil {
		return Sale{}, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, sale_id, name, total::text, revenue_account_id
FROM sale_lines WHERE sale_id=$1 ORDER BY id`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line SaleLine
		var total string
		var account *int64
		if err := rows.Scan(&line.ID, &line.SaleID, &line.Name, &total, &account); err != nil {
			return Sale{}, err
		}
		if line.Total, err = decimal.NewFromString(total); err != nil {
			return Sale{}, err
		}
		if account != nil {
			line.RevenueAccountID = *account
		}
		s.Lines = append(s.Lines, line)
	}
	return s, rows.Err()
}

func (r *repository) List(ctx context.Context, tenantID, posID int64, limit, offset int) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `SELECT id, tenant_id, pos_id, label, gross_ttc::text, vat_rate_pct::text,
discount_pct::text, discount_posted, balance_due::text, created_at, updated_at
FROM sales WHERE tenant_id=$1 AND ($2::bigint = 0 OR pos_id=$2)
ORDER BY id DESC LIMIT $3 OFFSET $4`, tenantID, posID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		var s Sale
		var gross, vat, discount, balance string
		if err := rows.Scan(&s.ID, &s.TenantID, &s.POSID, &s.Label, &gross, &vat, &discount,
			&s.DiscountPosted, &balance, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if s.GrossTTC, err = decimal.NewFromString(gross); err != nil {
			return nil, err
		}
		if s.VATRatePct, err = decimal.NewFromString(vat); err != nil {
			return nil, err
		}
		if s.DiscountPct, err = decimal.NewFromString(discount); err != nil {
			return nil, err
		}
		if s.BalanceDue, err = decimal.NewFromString(balance); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) ListPayments(ctx context.Context, saleID int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, sale_id, receipt::text, amount::text, method, journal_id, user_id, created_at
FROM sale_payments WHERE sale_id=$1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		var amount string
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Receipt, &amount, &p.Method, &p.JournalID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
