package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

const (
	reminderLogsTable = "reminder_logs"
	invoiceLogsTable  = "invoice_whatsapp_logs"
	resellerLogsTable = "reseller_notification_logs"
)

// retryLog holds the statements shared by the log tables that carry a retry counter.
type retryLog struct {
	db    *sql.DB
	table string
	kind  model.LogKind
}

func (l retryLog) MarkSent(ctx context.Context, id int64, messageID string, sentAt time.Time) error {
	_, err := l.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = ?, message_id = ?, sent_at = ?, error_message = NULL
		WHERE id = ?
	`, l.table), string(model.Sent), nullString(messageID), sentAt, id)
	return err
}

func (l retryLog) MarkFailed(ctx context.Context, id int64, errMsg string, retryCount int) error {
	_, err := l.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = ?, error_message = ?, retry_count = ?
		WHERE id = ?
	`, l.table), string(model.Failed), errMsg, retryCount, id)
	return err
}

func (l retryLog) IncrementRetry(ctx context.Context, id int64, errMsg string) error {
	_, err := l.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = ?, error_message = ?, retry_count = retry_count + 1
		WHERE id = ?
	`, l.table), string(model.Failed), errMsg, id)
	return err
}

// ListResendable returns the tenant's pending or failed rows created in [from, to)
// that have not used up their retries.
func (l retryLog) ListResendable(ctx context.Context, tenantID string, from, to time.Time) ([]model.NotificationLog, error) {
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, reseller_id, client_id, phone, message, status, retry_count, created_at
		FROM %s
		WHERE reseller_id = ?
		  AND status IN (?, ?)
		  AND created_at >= ? AND created_at < ?
		  AND retry_count < ?
		ORDER BY created_at ASC
	`, l.table), tenantID, string(model.Pending), string(model.Failed), from, to, model.MaxRetries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.NotificationLog
	for rows.Next() {
		n := model.NotificationLog{Kind: l.kind}
		var status string
		if err := rows.Scan(
			&n.ID,
			&n.TenantID,
			&n.ClientID,
			&n.Phone,
			&n.Message,
			&status,
			&n.RetryCount,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.Status = model.Status(status)
		out = append(out, n)
	}
	return out, rows.Err()
}

type MySQLReminderLogRepo struct {
	retryLog
}

func NewMySQLReminderLogRepo(db *sql.DB) *MySQLReminderLogRepo {
	return &MySQLReminderLogRepo{retryLog{db: db, table: reminderLogsTable, kind: model.ReminderLog}}
}

func (r *MySQLReminderLogRepo) ExistsForDay(ctx context.Context, clientID, templateID int64, from, to time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reminder_logs
		WHERE client_id = ? AND template_id = ? AND created_at >= ? AND created_at < ?
	`, clientID, templateID, from, to).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MySQLReminderLogRepo) Create(ctx context.Context, l *model.NotificationLog) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_logs
			(reseller_id, client_id, template_id, phone, message, status, error_message, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.TenantID, l.ClientID, l.TemplateID, l.Phone, l.Message, string(l.Status),
		nullString(l.ErrorMessage), l.RetryCount, l.CreatedAt)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

type MySQLInvoiceLogRepo struct {
	retryLog
}

func NewMySQLInvoiceLogRepo(db *sql.DB) *MySQLInvoiceLogRepo {
	return &MySQLInvoiceLogRepo{retryLog{db: db, table: invoiceLogsTable, kind: model.InvoiceLog}}
}

func (r *MySQLInvoiceLogRepo) ExistsForInvoice(ctx context.Context, invoiceID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invoice_whatsapp_logs WHERE invoice_id = ?
	`, invoiceID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MySQLInvoiceLogRepo) Create(ctx context.Context, l *model.NotificationLog) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invoice_whatsapp_logs
			(invoice_id, reseller_id, client_id, phone, message, status, error_message, message_id, retry_count, created_at, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.InvoiceID, l.TenantID, l.ClientID, l.Phone, l.Message, string(l.Status),
		nullString(l.ErrorMessage), nullString(l.MessageID), l.RetryCount, l.CreatedAt, l.SentAt)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

type MySQLResellerLogRepo struct {
	db *sql.DB
}

func NewMySQLResellerLogRepo(db *sql.DB) *MySQLResellerLogRepo {
	return &MySQLResellerLogRepo{db: db}
}

func (r *MySQLResellerLogRepo) ExistsForDay(ctx context.Context, tenantID string, trigger model.LifecycleTrigger, from, to time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reseller_notification_logs
		WHERE reseller_id = ? AND trigger_type = ? AND created_at >= ? AND created_at < ?
	`, tenantID, string(trigger), from, to).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MySQLResellerLogRepo) Create(ctx context.Context, l *model.NotificationLog) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reseller_notification_logs
			(reseller_id, trigger_type, phone, message, status, error_message, message_id, created_at, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.TenantID, string(l.TriggerType), l.Phone, l.Message, string(l.Status),
		nullString(l.ErrorMessage), nullString(l.MessageID), l.CreatedAt, l.SentAt)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
