package posting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/coa"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/journals"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/money"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/postingcfg"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
	"github.com/pavilion-erp/pavilion-erp/internal/platform/db"
)

// Repository owns the transaction boundary of every poster method.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes every operation a posting needs within its
// transaction: business rows, configuration, journal primitives, and the
// in-transaction balance read used for solvency checks.
type TxRepository interface {
	GetSaleForUpdate(ctx context.Context, saleID int64) (SaleRecord, error)
	MarkSaleDiscountPosted(ctx context.Context, saleID int64) error
	ClearSaleDiscountPosted(ctx context.Context, saleID int64) error
	ApplySalePayment(ctx context.Context, saleID int64, amount decimal.Decimal) (decimal.Decimal, error)
	InsertSalePayment(ctx context.Context, saleID int64, amount decimal.Decimal, method Method, userID int64) (int64, error)
	LinkSalePaymentJournal(ctx context.Context, paymentID, journalID int64) error

	InsertExpense(ctx context.Context, in ExpenseInput) (int64, error)
	LinkExpenseJournal(ctx context.Context, expenseID, journalID int64) error

	InsertPurchase(ctx context.Context, in PurchaseInput, total decimal.Decimal) (int64, error)
	LinkPurchaseJournal(ctx context.Context, purchaseID, journalID int64) error
	GetPurchaseForUpdate(ctx context.Context, purchaseID int64) (PurchaseRecord, error)
	ApplyPurchasePayment(ctx context.Context, purchaseID int64, amount decimal.Decimal) (decimal.Decimal, error)
	InsertSupplierPayment(ctx context.Context, purchaseID int64, amount decimal.Decimal, method Method, userID int64) (int64, error)
	LinkSupplierPaymentJournal(ctx context.Context, paymentID, journalID int64) error
	GetSupplierPaymentPurchase(ctx context.Context, journalID int64) (int64, error)

	GetConfig(ctx context.Context, posID int64) (postingcfg.Config, error)
	GetAccount(ctx context.Context, accountID int64) (coa.Account, error)

	OpenJournal(ctx context.Context, in journals.HeaderInput) (journals.Journal, error)
	AppendLine(ctx context.Context, journalID int64, in journals.LineInput) error
	FinaliseJournal(ctx context.Context, journalID int64) error
	GetJournalWithLines(ctx context.Context, journalID int64) (journals.Journal, error)
	MarkJournalReversed(ctx context.Context, journalID, reversalID int64) error

	SumBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetSaleForUpdate(ctx context.Context, saleID int64) (SaleRecord, error) {
	var s SaleRecord
	var gross, vat, discount, balance string
	err := r.tx.QueryRow(ctx, `SELECT id, tenant_id, pos_id, label, gross_ttc::text, vat_rate_pct::text,
discount_pct::text, discount_posted, balance_due::text
FROM sales WHERE id=$1 FOR UPDATE`, saleID).
		Scan(&s.ID, &s.TenantID, &s.POSID, &s.Label, &gross, &vat, &discount, &s.DiscountPosted, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SaleRecord{}, shared.ErrSaleNotFound
		}
		return SaleRecord{}, err
	}
	if s.GrossTTC, err = decimal.NewFromString(gross); err != nil {
		return SaleRecord{}, err
	}
	if s.VATRatePct, err = decimal.NewFromString(vat); err != nil {
		return SaleRecord{}, err
	}
	if s.DiscountPct, err = decimal.NewFromString(discount); err != nil {
		return SaleRecord{}, err
	}
	if s.BalanceDue, err = decimal.NewFromString(balance); err != nil {
		return SaleRecord{}, err
	}
	rows, err := r.tx.Query(ctx, `SELECT name, total::text, revenue_account_id
FROM sale_lines WHERE sale_id=$1 ORDER BY id`, saleID)
	if err != nil {
		return SaleRecord{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line SaleLineRecord
		var total string
		var account *int64
		if err := rows.Scan(&line.Name, &total, &account); err != nil {
			return SaleRecord{}, err
		}
		if line.Total, err = decimal.NewFromString(total); err != nil {
			return SaleRecord{}, err
		}
		if account != nil {
			line.RevenueAccountID = *account
		}
		s.Lines = append(s.Lines, line)
	}
	return s, rows.Err()
}

// MarkSaleDiscountPosted flips the flag exactly once. A zero row count means
// another transaction already posted the discount.
func (r *txRepository) MarkSaleDiscountPosted(ctx context.Context, saleID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE sales SET discount_posted=TRUE, updated_at=NOW()
WHERE id=$1 AND discount_posted=FALSE`, saleID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrConcurrentDiscountPosting
	}
	return nil
}

func (r *txRepository) ClearSaleDiscountPosted(ctx context.Context, saleID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE sales SET discount_posted=FALSE, updated_at=NOW() WHERE id=$1`, saleID)
	return err
}

func (r *txRepository) ApplySalePayment(ctx context.Context, saleID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance string
	err := r.tx.QueryRow(ctx, `UPDATE sales SET balance_due = balance_due - $2, updated_at=NOW()
WHERE id=$1 RETURNING balance_due::text`, saleID, money.Store(amount)).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, shared.ErrSaleNotFound
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(balance)
}

func (r *txRepository) InsertSalePayment(ctx context.Context, saleID int64, amount decimal.Decimal, method Method, userID int64) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sale_payments (sale_id, receipt, amount, method, user_id)
VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		saleID, uuid.NewString(), money.Store(amount), method, userID).Scan(&id)
	return id, err
}

func (r *txRepository) LinkSalePaymentJournal(ctx context.Context, paymentID, journalID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE sale_payments SET journal_id=$2 WHERE id=$1`, paymentID, journalID)
	return err
}

func (r *txRepository) InsertExpense(ctx context.Context, in ExpenseInput) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO expenses
(tenant_id, pos_id, type, description, amount, vat_amount, supplier_name, invoice_ref, expense_account_id, user_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		in.TenantID, in.POSID, in.Type, in.Description, money.Store(in.Amount), money.Store(in.VATAmount),
		in.SupplierName, in.InvoiceRef, in.ExpenseAccountID, in.UserID).Scan(&id)
	return id, err
}

func (r *txRepository) LinkExpenseJournal(ctx context.Context, expenseID, journalID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE expenses SET journal_id=$2 WHERE id=$1`, expenseID, journalID)
	return err
}

func (r *txRepository) InsertPurchase(ctx context.Context, in PurchaseInput, total decimal.Decimal) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchases (tenant_id, pos_id, supplier_name, total, balance_due)
VALUES ($1,$2,$3,$4,$4) RETURNING id`,
		in.TenantID, in.POSID, in.SupplierName, money.Store(total)).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, line := range in.Lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO purchase_lines (purchase_id, description, total, account_id)
VALUES ($1,$2,$3,$4)`, id, line.Description, money.Store(line.Total), nullID(line.AccountID)); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (r *txRepository) LinkPurchaseJournal(ctx context.Context, purchaseID, journalID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE purchases SET journal_id=$2 WHERE id=$1`, purchaseID, journalID)
	return err
}

func (r *txRepository) GetPurchaseForUpdate(ctx context.Context, purchaseID int64) (PurchaseRecord, error) {
	var p PurchaseRecord
	var total, balance string
	err := r.tx.QueryRow(ctx, `SELECT id, tenant_id, pos_id, supplier_name, total::text, balance_due::text
FROM purchases WHERE id=$1 FOR UPDATE`, purchaseID).
		Scan(&p.ID, &p.TenantID, &p.POSID, &p.SupplierName, &total, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, shared.ErrPurchaseNotFound
		}
		return PurchaseRecord{}, err
	}
	if p.Total, err = decimal.NewFromString(total); err != nil {
		return PurchaseRecord{}, err
	}
	if p.BalanceDue, err = decimal.NewFromString(balance); err != nil {
		return PurchaseRecord{}, err
	}
	return p, nil
}

func (r *txRepository) ApplyPurchasePayment(ctx context.Context, purchaseID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance string
	err := r.tx.QueryRow(ctx, `UPDATE purchases SET balance_due = balance_due - $2
WHERE id=$1 RETURNING balance_due::text`, purchaseID, money.Store(amount)).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, shared.ErrPurchaseNotFound
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(balance)
}

func (r *txRepository) InsertSupplierPayment(ctx context.Context, purchaseID int64, amount decimal.Decimal, method Method, userID int64) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO supplier_payments (purchase_id, amount, method, user_id)
VALUES ($1,$2,$3,$4) RETURNING id`, purchaseID, money.Store(amount), method, userID).Scan(&id)
	return id, err
}

func (r *txRepository) LinkSupplierPaymentJournal(ctx context.Context, paymentID, journalID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE supplier_payments SET journal_id=$2 WHERE id=$1`, paymentID, journalID)
	return err
}

// GetSupplierPaymentPurchase resolves the purchase a payment journal settled.
// Returns 0 when the journal did not come from a supplier payment.
func (r *txRepository) GetSupplierPaymentPurchase(ctx context.Context, journalID int64) (int64, error) {
	var purchaseID int64
	err := r.tx.QueryRow(ctx, `SELECT purchase_id FROM supplier_payments WHERE journal_id=$1`, journalID).
		Scan(&purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return purchaseID, nil
}

func (r *txRepository) GetConfig(ctx context.Context, posID int64) (postingcfg.Config, error) {
	return postingcfg.Get(ctx, r.tx, posID)
}

// GetAccount duplicates the chart-of-accounts lookup so it runs on this
// transaction's snapshot.
func (r *txRepository) GetAccount(ctx context.Context, accountID int64) (coa.Account, error) {
	var a coa.Account
	err := r.tx.QueryRow(ctx, `SELECT id, number, name, class_id, active, created_at, updated_at
FROM accounts WHERE id=$1`, accountID).
		Scan(&a.ID, &a.Number, &a.Name, &a.ClassID, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coa.Account{}, shared.ErrAccountNotFound
		}
		return coa.Account{}, err
	}
	return a, nil
}

func (r *txRepository) OpenJournal(ctx context.Context, in journals.HeaderInput) (journals.Journal, error) {
	return journals.Open(ctx, r.tx, in)
}

func (r *txRepository) AppendLine(ctx context.Context, journalID int64, in journals.LineInput) error {
	return journals.AppendLine(ctx, r.tx, journalID, in)
}

func (r *txRepository) FinaliseJournal(ctx context.Context, journalID int64) error {
	return journals.Finalise(ctx, r.tx, journalID)
}

func (r *txRepository) GetJournalWithLines(ctx context.Context, journalID int64) (journals.Journal, error) {
	return journals.GetWithLines(ctx, r.tx, journalID)
}

func (r *txRepository) MarkJournalReversed(ctx context.Context, journalID, reversalID int64) error {
	return journals.MarkReversed(ctx, r.tx, journalID, reversalID)
}

func (r *txRepository) SumBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var sum string
	err := r.tx.QueryRow(ctx, `SELECT (COALESCE(SUM(e.debit),0) - COALESCE(SUM(e.credit),0))::text
FROM journal_entries e JOIN journals j ON j.id = e.journal_id
WHERE e.account_id=$1 AND j.finalised`, accountID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(sum)
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
