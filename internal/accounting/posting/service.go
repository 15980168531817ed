package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/allocation"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/coa"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/journals"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/money"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/postingcfg"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

// Service turns business events into balanced journals. Every public method
// owns exactly one database transaction; adapters participate in it through
// the TxRepository rather than opening their own.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PostSalePayment settles part of a sale: a cash or bank debit, one credit
// per revenue account in account-number order, a VAT credit when configured,
// and the discount debit exactly once per sale.
func (s *Service) PostSalePayment(ctx context.Context, in SalePaymentInput) (Result, error) {
	if !in.Amount.IsPositive() {
		return Result{}, errors.New("posting: payment amount must be positive")
	}
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(sale.BalanceDue) {
			return shared.ErrOverpayment
		}
		cfg, err := tx.GetConfig(ctx, in.POSID)
		if err != nil {
			return err
		}
		settle, err := s.settlementAccount(ctx, tx, cfg, in.Method)
		if err != nil {
			return err
		}

		input, vatAccountID, discountAccountID, err := s.allocationInput(ctx, tx, cfg, sale)
		if err != nil {
			return err
		}
		alloc, err := allocation.Compute(input, in.Amount)
		if err != nil {
			return err
		}

		paymentID, err := tx.InsertSalePayment(ctx, sale.ID, in.Amount, in.Method, in.UserID)
		if err != nil {
			return err
		}
		carriesDiscount := alloc.DiscountDebit.IsPositive()
		journal, err := tx.OpenJournal(ctx, journals.HeaderInput{
			Timestamp:       s.now(),
			Label:           "Payment - " + sale.Label,
			Amount:          in.Amount,
			Kind:            journals.KindInflow,
			Reference:       fmt.Sprintf("PAY-%d", paymentID),
			TenantID:        sale.TenantID,
			UserID:          in.UserID,
			SaleID:          &sale.ID,
			CarriesDiscount: carriesDiscount,
		})
		if err != nil {
			return err
		}

		ordinal := 1
		if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
			AccountID: settle.ID,
			Debit:     alloc.CashDebit,
			Ordinal:   ordinal,
			Label:     fmt.Sprintf("Received %s by %s", money.Format(in.Amount), in.Method),
		}); err != nil {
			return err
		}
		for _, credit := range alloc.RevenueCredits {
			ordinal++
			label := credit.Label
			if label == "" {
				label = sale.Label
			}
			if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
				AccountID: credit.AccountID,
				Credit:    credit.Amount,
				Ordinal:   ordinal,
				Label:     label,
			}); err != nil {
				return err
			}
		}
		if alloc.VATCredit.IsPositive() {
			vatAccount, err := s.activeAccount(ctx, tx, vatAccountID)
			if err != nil {
				return err
			}
			ordinal++
			if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
				AccountID: vatAccount.ID,
				Credit:    alloc.VATCredit,
				Ordinal:   ordinal,
				Label:     "VAT collected",
			}); err != nil {
				return err
			}
		}
		if carriesDiscount {
			discountAccount, err := s.activeAccount(ctx, tx, discountAccountID)
			if err != nil {
				return err
			}
			ordinal++
			if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
				AccountID: discountAccount.ID,
				Debit:     alloc.DiscountDebit,
				Ordinal:   ordinal,
				Label:     fmt.Sprintf("Discount granted %s%%", sale.DiscountPct.String()),
			}); err != nil {
				return err
			}
		}
		if err := tx.FinaliseJournal(ctx, journal.ID); err != nil {
			return err
		}
		if carriesDiscount {
			if err := tx.MarkSaleDiscountPosted(ctx, sale.ID); err != nil {
				return err
			}
		}
		outstanding, err := tx.ApplySalePayment(ctx, sale.ID, in.Amount)
		if err != nil {
			return err
		}
		if err := tx.LinkSalePaymentJournal(ctx, paymentID, journal.ID); err != nil {
			return err
		}
		full, err := tx.GetJournalWithLines(ctx, journal.ID)
		if err != nil {
			return err
		}
		res = Result{JournalID: journal.ID, Lines: full.Lines, Outstanding: outstanding}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("posted sale payment",
		slog.Int64("sale_id", in.SaleID),
		slog.Int64("journal_id", res.JournalID),
		slog.String("amount", in.Amount.StringFixed(2)))
	return res, nil
}

// PostExpense writes an outflow: a debit on the expense account (split with
// deductible VAT when that role is configured) against a cash or bank credit.
func (s *Service) PostExpense(ctx context.Context, in ExpenseInput) (Result, error) {
	if !in.Amount.IsPositive() {
		return Result{}, errors.New("posting: expense amount must be positive")
	}
	if in.VATAmount.IsNegative() || in.VATAmount.GreaterThanOrEqual(in.Amount) {
		return Result{}, errors.New("posting: expense VAT amount out of range")
	}
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		cfg, err := tx.GetConfig(ctx, in.POSID)
		if err != nil {
			return err
		}
		settle, err := s.settlementAccount(ctx, tx, cfg, in.Method)
		if err != nil {
			return err
		}
		if err := s.checkSolvency(ctx, tx, settle.ID, in.Amount); err != nil {
			return err
		}
		expenseAccount, err := s.activeAccount(ctx, tx, in.ExpenseAccountID)
		if err != nil {
			return err
		}
		expenseID, err := tx.InsertExpense(ctx, in)
		if err != nil {
			return err
		}
		journal, err := tx.OpenJournal(ctx, journals.HeaderInput{
			Timestamp:   s.now(),
			Label:       "Expense - " + in.Type,
			Amount:      in.Amount,
			Kind:        journals.KindOutflow,
			Reference:   fmt.Sprintf("EXP-%d", expenseID),
			Description: in.Description,
			TenantID:    in.TenantID,
			UserID:      in.UserID,
		})
		if err != nil {
			return err
		}

		net := in.Amount
		vatDeductibleID, splitVAT := cfg.Account(postingcfg.RoleVATDeductible)
		splitVAT = splitVAT && in.VATAmount.IsPositive()
		if splitVAT {
			net = in.Amount.Sub(in.VATAmount)
		}
		ordinal := 1
		if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
			AccountID: expenseAccount.ID,
			Debit:     net,
			Ordinal:   ordinal,
			Label:     in.Description,
		}); err != nil {
			return err
		}
		if splitVAT {
			vatAccount, err := s.activeAccount(ctx, tx, vatDeductibleID)
			if err != nil {
				return err
			}
			ordinal++
			if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
				AccountID: vatAccount.ID,
				Debit:     in.VATAmount,
				Ordinal:   ordinal,
				Label:     "VAT deductible",
			}); err != nil {
				return err
			}
		}
		ordinal++
		if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
			AccountID: settle.ID,
			Credit:    in.Amount,
			Ordinal:   ordinal,
			Label:     fmt.Sprintf("Paid %s by %s", money.Format(in.Amount), in.Method),
		}); err != nil {
			return err
		}
		if err := tx.FinaliseJournal(ctx, journal.ID); err != nil {
			return err
		}
		if err := tx.LinkExpenseJournal(ctx, expenseID, journal.ID); err != nil {
			return err
		}
		full, err := tx.GetJournalWithLines(ctx, journal.ID)
		if err != nil {
			return err
		}
		res = Result{JournalID: journal.ID, Lines: full.Lines, Outstanding: decimal.Zero}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("posted expense",
		slog.Int64("journal_id", res.JournalID),
		slog.String("amount", in.Amount.StringFixed(2)))
	return res, nil
}

// PostPurchase recognises a supplier liability: purchase debits per line
// against a single supplier-payable credit.
func (s *Service) PostPurchase(ctx context.Context, in PurchaseInput) (Result, error) {
	if len(in.Lines) == 0 {
		return Result{}, errors.New("posting: purchase requires at least one line")
	}
	total := decimal.Zero
	for _, line := range in.Lines {
		if !line.Total.IsPositive() {
			return Result{}, errors.New("posting: purchase line total must be positive")
		}
		total = total.Add(line.Total)
	}
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		cfg, err := tx.GetConfig(ctx, in.POSID)
		if err != nil {
			return err
		}
		supplierID, ok := cfg.Account(postingcfg.RoleSupplierPayable)
		if !ok {
			return fmt.Errorf("%w: no supplier payable account", shared.ErrConfiguration)
		}
		supplier, err := s.activeAccount(ctx, tx, supplierID)
		if err != nil {
			return err
		}
		defaultID, hasDefault := cfg.Account(postingcfg.RolePurchasesDefault)

		purchaseID, err := tx.InsertPurchase(ctx, in, total)
		if err != nil {
			return err
		}
		journal, err := tx.OpenJournal(ctx, journals.HeaderInput{
			Timestamp: s.now(),
			Label:     "Purchase - " + in.SupplierName,
			Amount:    total,
			Kind:      journals.KindTransfer,
			Reference: fmt.Sprintf("PUR-%d", purchaseID),
			TenantID:  in.TenantID,
			UserID:    in.UserID,
		})
		if err != nil {
			return err
		}
		ordinal := 0
		for _, line := range in.Lines {
			accountID := line.AccountID
			if accountID == 0 {
				if !hasDefault {
					return fmt.Errorf("%w: purchase line %q has no account and no purchases default", shared.ErrConfiguration, line.Description)
				}
				accountID = defaultID
			}
			account, err := s.activeAccount(ctx, tx, accountID)
			if err != nil {
				return err
			}
			ordinal++
			if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
				AccountID: account.ID,
				Debit:     line.Total,
				Ordinal:   ordinal,
				Label:     line.Description,
			}); err != nil {
				return err
			}
		}
		ordinal++
		if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
			AccountID: supplier.ID,
			Credit:    total,
			Ordinal:   ordinal,
			Label:     "Due to " + in.SupplierName,
		}); err != nil {
			return err
		}
		if err := tx.FinaliseJournal(ctx, journal.ID); err != nil {
			return err
		}
		if err := tx.LinkPurchaseJournal(ctx, purchaseID, journal.ID); err != nil {
			return err
		}
		full, err := tx.GetJournalWithLines(ctx, journal.ID)
		if err != nil {
			return err
		}
		res = Result{JournalID: journal.ID, Lines: full.Lines, Outstanding: total}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("posted purchase",
		slog.Int64("journal_id", res.JournalID),
		slog.String("amount", res.Outstanding.StringFixed(2)))
	return res, nil
}

// PostPurchasePayment settles part of a purchase liability from cash or bank,
// after checking the settlement account covers the outflow.
func (s *Service) PostPurchasePayment(ctx context.Context, in PurchasePaymentInput) (Result, error) {
	if !in.Amount.IsPositive() {
		return Result{}, errors.New("posting: payment amount must be positive")
	}
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		purchase, err := tx.GetPurchaseForUpdate(ctx, in.PurchaseID)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(purchase.BalanceDue) {
			return shared.ErrOverpayment
		}
		cfg, err := tx.GetConfig(ctx, in.POSID)
		if err != nil {
			return err
		}
		settle, err := s.settlementAccount(ctx, tx, cfg, in.Method)
		if err != nil {
			return err
		}
		if err := s.checkSolvency(ctx, tx, settle.ID, in.Amount); err != nil {
			return err
		}
		supplierID, ok := cfg.Account(postingcfg.RoleSupplierPayable)
		if !ok {
			return fmt.Errorf("%w: no supplier payable account", shared.ErrConfiguration)
		}
		supplier, err := s.activeAccount(ctx, tx, supplierID)
		if err != nil {
			return err
		}

		paymentID, err := tx.InsertSupplierPayment(ctx, purchase.ID, in.Amount, in.Method, in.UserID)
		if err != nil {
			return err
		}
		journal, err := tx.OpenJournal(ctx, journals.HeaderInput{
			Timestamp: s.now(),
			Label:     "Supplier payment - " + purchase.SupplierName,
			Amount:    in.Amount,
			Kind:      journals.KindOutflow,
			Reference: fmt.Sprintf("PPAY-%d", paymentID),
			TenantID:  purchase.TenantID,
			UserID:    in.UserID,
		})
		if err != nil {
			return err
		}
		if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
			AccountID: supplier.ID,
			Debit:     in.Amount,
			Ordinal:   1,
			Label:     "Settles " + purchase.SupplierName,
		}); err != nil {
			return err
		}
		if err := tx.AppendLine(ctx, journal.ID, journals.LineInput{
			AccountID: settle.ID,
			Credit:    in.Amount,
			Ordinal:   2,
			Label:     fmt.Sprintf("Paid %s by %s", money.Format(in.Amount), in.Method),
		}); err != nil {
			return err
		}
		if err := tx.FinaliseJournal(ctx, journal.ID); err != nil {
			return err
		}
		outstanding, err := tx.ApplyPurchasePayment(ctx, purchase.ID, in.Amount)
		if err != nil {
			return err
		}
		if err := tx.LinkSupplierPaymentJournal(ctx, paymentID, journal.ID); err != nil {
			return err
		}
		full, err := tx.GetJournalWithLines(ctx, journal.ID)
		if err != nil {
			return err
		}
		res = Result{JournalID: journal.ID, Lines: full.Lines, Outstanding: outstanding}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("posted purchase payment",
		slog.Int64("purchase_id", in.PurchaseID),
		slog.Int64("journal_id", res.JournalID))
	return res, nil
}

// Reverse cancels a posted business event with a compensating journal that
// mirrors the original's lines with debit and credit swapped. Reversing the
// journal that carried a sale's discount debit clears the sale's flag so a
// later payment can post it again; reversed payments, sale or supplier,
// put the amount back on the outstanding balance.
func (s *Service) Reverse(ctx context.Context, journalID, userID int64, reason string) (journals.Journal, error) {
	var reversal journals.Journal
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetJournalWithLines(ctx, journalID)
		if err != nil {
			return err
		}
		if !original.Finalised {
			return errors.New("posting: cannot reverse an unfinalised journal")
		}
		if original.ReversedBy != nil {
			return shared.ErrAlreadyReversed
		}
		created, err := tx.OpenJournal(ctx, journals.HeaderInput{
			Timestamp:   s.now(),
			Label:       "REVERSAL: " + original.Label,
			Amount:      original.Amount,
			Kind:        flipKind(original.Kind),
			Reference:   "REV-" + original.Reference,
			Description: reason,
			TenantID:    original.TenantID,
			UserID:      userID,
		})
		if err != nil {
			return err
		}
		for _, line := range original.Lines {
			if err := tx.AppendLine(ctx, created.ID, journals.LineInput{
				AccountID: line.AccountID,
				Debit:     line.Credit,
				Credit:    line.Debit,
				Ordinal:   line.Ordinal,
				Label:     line.Label,
			}); err != nil {
				return err
			}
		}
		if err := tx.FinaliseJournal(ctx, created.ID); err != nil {
			return err
		}
		if err := tx.MarkJournalReversed(ctx, original.ID, created.ID); err != nil {
			return err
		}
		if original.SaleID != nil {
			if original.CarriesDiscount {
				if err := tx.ClearSaleDiscountPosted(ctx, *original.SaleID); err != nil {
					return err
				}
			}
			if original.Kind == journals.KindInflow {
				// The reversed payment is owed again.
				if _, err := tx.ApplySalePayment(ctx, *original.SaleID, original.Amount.Neg()); err != nil {
					return err
				}
			}
		}
		purchaseID, err := tx.GetSupplierPaymentPurchase(ctx, original.ID)
		if err != nil {
			return err
		}
		if purchaseID != 0 {
			// The supplier is owed the reversed payment again.
			if _, err := tx.ApplyPurchasePayment(ctx, purchaseID, original.Amount.Neg()); err != nil {
				return err
			}
		}
		reversal, err = tx.GetJournalWithLines(ctx, created.ID)
		return err
	})
	if err != nil {
		return journals.Journal{}, err
	}
	s.logger.Info("reversed journal",
		slog.Int64("journal_id", journalID),
		slog.Int64("reversal_id", reversal.ID))
	return reversal, nil
}

func flipKind(kind journals.Kind) journals.Kind {
	switch kind {
	case journals.KindInflow:
		return journals.KindOutflow
	case journals.KindOutflow:
		return journals.KindInflow
	default:
		return journals.KindTransfer
	}
}

// allocationInput resolves the sale's lines against the chart of accounts
// and the posting configuration. A missing sales_default role means every
// line must carry its own revenue account; there is no generic-sales
// fallback account.
func (s *Service) allocationInput(ctx context.Context, tx TxRepository, cfg postingcfg.Config, sale SaleRecord) (allocation.Sale, int64, int64, error) {
	defaultID, hasDefault := cfg.Account(postingcfg.RoleSalesDefault)
	lines := make([]allocation.Line, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		accountID := line.RevenueAccountID
		if accountID == 0 {
			if !hasDefault {
				return allocation.Sale{}, 0, 0, fmt.Errorf("%w: sale line %q has no revenue account and no sales default", shared.ErrConfiguration, line.Name)
			}
			accountID = defaultID
		}
		account, err := s.activeAccount(ctx, tx, accountID)
		if err != nil {
			return allocation.Sale{}, 0, 0, err
		}
		lines = append(lines, allocation.Line{
			Name:          line.Name,
			Total:         line.Total,
			AccountID:     account.ID,
			AccountNumber: account.Number,
		})
	}

	vatRate := sale.VATRatePct
	vatAccountID, hasVAT := cfg.Account(postingcfg.RoleVATCollected)
	if !hasVAT {
		// No VAT role configured: skip the VAT line, the full amount
		// goes to revenue.
		vatRate = decimal.Zero
	}
	discountPct := sale.DiscountPct
	discountAccountID, hasDiscount := cfg.Account(postingcfg.RoleDiscountGranted)
	if !hasDiscount {
		discountPct = decimal.Zero
	}
	return allocation.Sale{
		GrossTTC:       sale.GrossTTC,
		VATRatePct:     vatRate,
		DiscountPct:    discountPct,
		DiscountPosted: sale.DiscountPosted,
		Lines:          lines,
	}, vatAccountID, discountAccountID, nil
}

// settlementAccount maps a payment method to the cash or bank role.
func (s *Service) settlementAccount(ctx context.Context, tx TxRepository, cfg postingcfg.Config, method Method) (coa.Account, error) {
	var role postingcfg.Role
	switch method {
	case MethodCash:
		role = postingcfg.RoleCash
	case MethodBank, MethodCard, MethodTransfer, MethodMobile:
		role = postingcfg.RoleBank
	default:
		return coa.Account{}, fmt.Errorf("posting: unknown payment method %q", method)
	}
	accountID, ok := cfg.Account(role)
	if !ok {
		return coa.Account{}, fmt.Errorf("%w: no %s account configured for method %s", shared.ErrConfiguration, role, method)
	}
	return s.activeAccount(ctx, tx, accountID)
}

func (s *Service) activeAccount(ctx context.Context, tx TxRepository, accountID int64) (coa.Account, error) {
	account, err := tx.GetAccount(ctx, accountID)
	if err != nil {
		return coa.Account{}, err
	}
	if !account.Active {
		return coa.Account{}, fmt.Errorf("%w: account %s is deactivated", shared.ErrConfiguration, account.Number)
	}
	return account, nil
}

// checkSolvency verifies the settlement account covers an outflow, reading
// the balance on this transaction's snapshot.
func (s *Service) checkSolvency(ctx context.Context, tx TxRepository, accountID int64, amount decimal.Decimal) error {
	balance, err := tx.SumBalance(ctx, accountID)
	if err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return shared.ErrInsufficientFunds
	}
	return nil
}
