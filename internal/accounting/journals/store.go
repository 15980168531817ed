package journals

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/money"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// DB is the slice of pgx shared by pgxpool.Pool and pgx.Tx. The posting
// service calls the store functions below inside its own transaction; the
// repository uses them against the pool for reads.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open validates the header and inserts an unfinalised journal.
func Open(ctx context.Context, db DB, in HeaderInput) (Journal, error) {
	if err := in.Validate(); err != nil {
		return Journal{}, err
	}
	row := db.QueryRow(ctx, `INSERT INTO journals
(ts, label, amount, kind, reference, description, tenant_id, user_id, sale_id, carries_discount, finalised)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,FALSE)
RETURNING id, created_at`,
		in.Timestamp, in.Label, money.Store(in.Amount), in.Kind, in.Reference,
		in.Description, in.TenantID, in.UserID, in.SaleID, in.CarriesDiscount)
	j := Journal{
		Timestamp:       in.Timestamp,
		Label:           in.Label,
		Amount:          money.Round(in.Amount),
		Kind:            in.Kind,
		Reference:       in.Reference,
		Description:     in.Description,
		TenantID:        in.TenantID,
		UserID:          in.UserID,
		SaleID:          in.SaleID,
		CarriesDiscount: in.CarriesDiscount,
	}
	if err := row.Scan(&j.ID, &j.CreatedAt); err != nil {
		return Journal{}, err
	}
	return j, nil
}

// AppendLine adds one entry line to an open journal.
func AppendLine(ctx context.Context, db DB, journalID int64, in LineInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	var finalised bool
	err := db.QueryRow(ctx, `SELECT finalised FROM journals WHERE id=$1`, journalID).Scan(&finalised)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrJournalNotFound
		}
		return err
	}
	if finalised {
		return shared.ErrFinalisedJournal
	}
	_, err = db.Exec(ctx, `INSERT INTO journal_entries (journal_id, account_id, debit, credit, ordinal, label)
VALUES ($1,$2,$3,$4,$5,$6)`,
		journalID, in.AccountID, money.Store(in.Debit), money.Store(in.Credit), in.Ordinal, in.Label)
	return err
}

// Finalise verifies the journal balances within tolerance and freezes it.
func Finalise(ctx context.Context, db DB, journalID int64) error {
	var finalised bool
	var debitText, creditText string
	err := db.QueryRow(ctx, `SELECT j.finalised,
COALESCE(SUM(e.debit),0)::text, COALESCE(SUM(e.credit),0)::text
FROM journals j LEFT JOIN journal_entries e ON e.journal_id = j.id
WHERE j.id=$1 GROUP BY j.finalised`, journalID).Scan(&finalised, &debitText, &creditText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrJournalNotFound
		}
		return err
	}
	if finalised {
		return shared.ErrFinalisedJournal
	}
	debit, err := decimal.NewFromString(debitText)
	if err != nil {
		return err
	}
	credit, err := decimal.NewFromString(creditText)
	if err != nil {
		return err
	}
	if !money.Balanced(debit, credit) {
		return shared.ErrUnbalancedJournal
	}
	_, err = db.Exec(ctx, `UPDATE journals SET finalised=TRUE WHERE id=$1`, journalID)
	return err
}

// MarkReversed links a finalised journal to its compensating journal.
func MarkReversed(ctx context.Context, db DB, journalID, reversalID int64) error {
	cmd, err := db.Exec(ctx, `UPDATE journals SET reversed_by=$2 WHERE id=$1 AND reversed_by IS NULL`, journalID, reversalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAlreadyReversed
	}
	return nil
}

// GetWithLines loads a journal and its lines in ordinal order.
func GetWithLines(ctx context.Context, db DB, journalID int64) (Journal, error) {
	var j Journal
	var amountText string
	err := db.QueryRow(ctx, `SELECT id, ts, label, amount::text, kind, reference, description,
tenant_id, user_id, sale_id, carries_discount, finalised, reversed_by, created_at
FROM journals WHERE id=$1`, journalID).
		Scan(&j.ID, &j.Timestamp, &j.Label, &amountText, &j.Kind, &j.Reference, &j.Description,
			&j.TenantID, &j.UserID, &j.SaleID, &j.CarriesDiscount, &j.Finalised, &j.ReversedBy, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Journal{}, shared.ErrJournalNotFound
		}
		return Journal{}, err
	}
	if j.Amount, err = decimal.NewFromString(amountText); err != nil {
		return Journal{}, err
	}
	rows, err := db.Query(ctx, `SELECT id, journal_id, account_id, debit::text, credit::text, ordinal, label
FROM journal_entries WHERE journal_id=$1 ORDER BY ordinal ASC`, journalID)
	if err != nil {
		return Journal{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		var debitText, creditText string
		if err := rows.Scan(&line.ID, &line.JournalID, &line.AccountID, &debitText, &creditText, &line.Ordinal, &line.Label); err != nil {
			return Journal{}, err
		}
		if line.Debit, err = decimal.NewFromString(debitText); err != nil {
			return Journal{}, err
		}
		if line.Credit, err = decimal.NewFromString(creditText); err != nil {
			return Journal{}, err
		}
		j.Lines = append(j.Lines, line)
	}
	return j, rows.Err()
}
