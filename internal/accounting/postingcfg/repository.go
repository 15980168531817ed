package postingcfg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/shared"
)

type Repository interface {
	Get(ctx context.Context, posID int64) (Config, error)
	SetRole(ctx context.Context, tenantID, posID int64, role Role, accountID int64) error
}

// DB is the query surface shared by pgxpool.Pool and pgx.Tx, so the posting
// service can load the configuration inside its own transaction.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Get loads the posting configuration for one point of sale.
func Get(ctx context.Context, db DB, posID int64) (Config, error) {
	row := db.QueryRow(ctx, `SELECT id, tenant_id, pos_id,
cash_account_id, bank_account_id, client_account_id, supplier_account_id,
sales_default_account_id, purchases_default_account_id,
vat_account_id, vat_deductible_account_id, discount_account_id,
created_at, updated_at
FROM posting_config WHERE pos_id=$1`, posID)
	return scanConfig(row)
}

// roleColumns whitelists the role -> column mapping used in SQL.
var roleColumns = map[Role]string{
	RoleCash:             "cash_account_id",
	RoleBank:             "bank_account_id",
	RoleClientReceivable: "client_account_id",
	RoleSupplierPayable:  "supplier_account_id",
	RoleSalesDefault:     "sales_default_account_id",
	RolePurchasesDefault: "purchases_default_account_id",
	RoleVATCollected:     "vat_account_id",
	RoleVATDeductible:    "vat_deductible_account_id",
	RoleDiscountGranted:  "discount_account_id",
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, posID int64) (Config, error) {
	return Get(ctx, r.db, posID)
}

func (r *repository) SetRole(ctx context.Context, tenantID, posID int64, role Role, accountID int64) error {
	column, ok := roleColumns[role]
	if !ok {
		return fmt.Errorf("postingcfg: unknown role %q", role)
	}
	query := fmt.Sprintf(`INSERT INTO posting_config (tenant_id, pos_id, %s)
VALUES ($1,$2,$3)
ON CONFLICT (pos_id) DO UPDATE SET %s=$3, updated_at=NOW()`, column, column)
	_, err := r.db.Exec(ctx, query, tenantID, posID, accountID)
	return err
}

func scanConfig(row pgx.Row) (Config, error) {
	var cfg Config
	slots := make([]*int64, len(Roles))
	dest := []any{&cfg.ID, &cfg.TenantID, &cfg.POSID}
	order := []Role{
		RoleCash, RoleBank, RoleClientReceivable, RoleSupplierPayable,
		RoleSalesDefault, RolePurchasesDefault, RoleVATCollected,
		RoleVATDeductible, RoleDiscountGranted,
	}
	for i := range order {
		dest = append(dest, &slots[i])
	}
	dest = append(dest, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Config{}, shared.ErrConfiguration
		}
		return Config{}, err
	}
	cfg.Accounts = make(map[Role]int64)
	for i, role := range order {
		if slots[i] != nil {
			cfg.Accounts[role] = *slots[i]
		}
	}
	return cfg, nil
}
