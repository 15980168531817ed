package shared

import "errors"

var (
	// ErrConfiguration indicates a missing posting-config role or an inactive account.
	ErrConfiguration = errors.New("accounting: posting configuration incomplete")
	// ErrUnbalancedJournal indicates debit and credit totals diverge at finalisation.
	ErrUnbalancedJournal = errors.New("accounting: journal does not balance")
	// ErrInsufficientFunds indicates the cash account cannot cover an outflow.
	ErrInsufficientFunds = errors.New("accounting: insufficient funds")
	// ErrOverpayment indicates a payment above the outstanding balance.
	ErrOverpayment = errors.New("accounting: payment exceeds outstanding balance")
	// ErrAlreadyReversed indicates a second reversal attempt on the same journal.
	ErrAlreadyReversed = errors.New("accounting: journal already reversed")
	// ErrFinalisedJournal indicates a write against a frozen journal.
	ErrFinalisedJournal = errors.New("accounting: journal is finalised")
	// ErrConcurrentDiscountPosting indicates two transactions raced on the discount flag.
	ErrConcurrentDiscountPosting = errors.New("accounting: discount already posted by concurrent transaction")
	// ErrJournalNotFound indicates a missing journal.
	ErrJournalNotFound = errors.New("accounting: journal not found")
	// ErrAccountNotFound indicates a missing ledger account.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrSaleNotFound indicates a missing sale record.
	ErrSaleNotFound = errors.New("accounting: sale not found")
	// ErrPurchaseNotFound indicates a missing purchase record.
	ErrPurchaseNotFound = errors.New("accounting: purchase not found")
	// ErrDuplicateCode indicates a (code, tenant) uniqueness violation.
	ErrDuplicateCode = errors.New("accounting: code already in use for tenant")
)
