package postingcfg

import "time"

// Role names a semantic slot in the per-point-of-sale posting configuration.
type Role string

const (
	RoleCash             Role = "cash"
	RoleBank             Role = "bank"
	RoleClientReceivable Role = "client_receivable"
	RoleSupplierPayable  Role = "supplier_payable"
	RoleSalesDefault     Role = "sales_default"
	RolePurchasesDefault Role = "purchases_default"
	RoleVATCollected     Role = "vat_collected"
	RoleVATDeductible    Role = "vat_deductible"
	RoleDiscountGranted  Role = "discount_granted"
)

// Roles lists every configurable role.
var Roles = []Role{
	RoleCash, RoleBank, RoleClientReceivable, RoleSupplierPayable,
	RoleSalesDefault, RolePurchasesDefault, RoleVATCollected,
	RoleVATDeductible, RoleDiscountGranted,
}

// Config maps semantic roles to account ids for one point of sale.
// A role absent from Accounts is unconfigured; each consumer documents
// its own fallback (the poster treats a missing cash role as a hard error,
// a missing VAT or discount role as "skip that line").
type Config struct {
	ID        int64
	TenantID  int64
	POSID     int64
	Accounts  map[Role]int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account returns the account mapped to role, if any.
func (c Config) Account(role Role) (int64, bool) {
	id, ok := c.Accounts[role]
	return id, ok
}
