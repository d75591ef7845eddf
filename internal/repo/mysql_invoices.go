package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

const sqlDate = "2006-01-02"

type MySQLInvoiceRepo struct {
	db *sql.DB
}

func NewMySQLInvoiceRepo(db *sql.DB) *MySQLInvoiceRepo {
	return &MySQLInvoiceRepo{db: db}
}

func (r *MySQLInvoiceRepo) ExistsForDueDate(ctx context.Context, clientID int64, dueDate time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invoices WHERE client_id = ? AND due_date = ?
	`, clientID, dueDate.Format(sqlDate)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MySQLInvoiceRepo) Create(ctx context.Context, inv *model.Invoice) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices
			(reseller_id, client_id, issue_date, due_date, value, discount, final_value, status, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.TenantID,
		inv.ClientID,
		inv.IssueDate.Format(sqlDate),
		inv.DueDate.Format(sqlDate),
		inv.Value,
		inv.Discount,
		inv.FinalValue,
		inv.Status,
		inv.Description,
	)
	if isDuplicate(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	inv.ID = id
	return true, nil
}
