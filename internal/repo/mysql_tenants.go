package repo

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

type MySQLTenantRepo struct {
	db *sql.DB
}

func NewMySQLTenantRepo(db *sql.DB) *MySQLTenantRepo {
	return &MySQLTenantRepo{db: db}
}

func (r *MySQLTenantRepo) ListActive(ctx context.Context) ([]model.Tenant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name, COALESCE(r.email, ''), COALESCE(r.phone, ''),
		       r.is_active, r.is_admin, r.whatsapp_enabled, COALESCE(r.account_status, ''),
		       COALESCE(sp.name, ''), COALESCE(sp.price, 0), r.subscription_expires_at
		FROM resellers r
		LEFT JOIN subscription_plans sp ON sp.id = r.subscription_plan_id
		WHERE r.is_active = 1
		ORDER BY r.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tenant
	for rows.Next() {
		var t model.Tenant
		var price decimal.NullDecimal
		var expires sql.NullTime
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Email,
			&t.Phone,
			&t.IsActive,
			&t.IsAdmin,
			&t.WhatsAppEnabled,
			&t.AccountStatus,
			&t.PlanName,
			&price,
			&expires,
		); err != nil {
			return nil, err
		}
		if price.Valid {
			t.PlanPrice = price.Decimal
		}
		if expires.Valid {
			e := expires.Time
			t.SubscriptionExpiresAt = &e
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type MySQLClientRepo struct {
	db *sql.DB
}

func NewMySQLClientRepo(db *sql.DB) *MySQLClientRepo {
	return &MySQLClientRepo{db: db}
}

// ListActive returns the tenant's active clients that have a renewal date.
func (r *MySQLClientRepo) ListActive(ctx context.Context, tenantID string) ([]model.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.reseller_id, c.name, COALESCE(c.username, ''), COALESCE(c.phone, ''),
		       COALESCE(c.email, ''), c.status, COALESCE(p.name, ''), c.renewal_date,
		       COALESCE(c.value, p.value, 0)
		FROM clients c
		LEFT JOIN plans p ON p.id = c.plan_id
		WHERE c.reseller_id = ? AND c.status = 'active' AND c.renewal_date IS NOT NULL
		ORDER BY c.id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var c model.Client
		var status string
		if err := rows.Scan(
			&c.ID,
			&c.TenantID,
			&c.Name,
			&c.Username,
			&c.Phone,
			&c.Email,
			&status,
			&c.PlanName,
			&c.RenewalDate,
			&c.Value,
		); err != nil {
			return nil, err
		}
		c.Status = model.ClientStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}
