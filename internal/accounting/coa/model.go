package coa

import "time"

// ClassKind enumerates the economic kinds an account class can carry.
type ClassKind string

const (
	KindAsset     ClassKind = "ASSET"
	KindLiability ClassKind = "LIABILITY"
	KindExpense   ClassKind = "EXPENSE"
	KindRevenue   ClassKind = "REVENUE"
)

// Statement enumerates financial-statement assignments.
type Statement string

const (
	StatementBalance Statement = "BALANCE"
	StatementIncome  Statement = "INCOME"
)

// Class is a top-level grouping of ledger accounts.
// (Code, TenantID) is unique.
type Class struct {
	ID        int64
	Code      string
	Name      string
	Kind      ClassKind
	Statement Statement
	TenantID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account is a posting-eligible ledger account. Numbers sort
// lexicographically; only active accounts may receive new postings.
type Account struct {
	ID        int64
	Number    string
	Name      string
	ClassID   int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
