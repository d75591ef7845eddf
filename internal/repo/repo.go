package repo

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

var ErrNotFound = errors.New("not found")

const errDuplicateEntry = 1062

type TenantRepository interface {
	ListActive(ctx context.Context) ([]model.Tenant, error)
}

type ClientRepository interface {
	ListActive(ctx context.Context, tenantID string) ([]model.Client, error)
}

type TemplateRepository interface {
	ListScheduledReminders(ctx context.Context, tenantID string) ([]model.Template, error)
	FindInvoiceTemplate(ctx context.Context, tenantID string) (model.Template, error)
	FindLifecycleTemplate(ctx context.Context, trigger model.LifecycleTrigger) (model.LifecycleTemplate, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, tenantID string) (model.ReminderSettings, error)
}

type InvoiceRepository interface {
	ExistsForDueDate(ctx context.Context, clientID int64, dueDate time.Time) (bool, error)
	// Create reports false without error when the invoice already exists.
	Create(ctx context.Context, inv *model.Invoice) (bool, error)
}

// LogWriter records one attempted send and closes it.
type LogWriter interface {
	Create(ctx context.Context, l *model.NotificationLog) error
	MarkSent(ctx context.Context, id int64, messageID string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string, retryCount int) error
}

// ResendableLogs feeds the reconnect resend pass.
type ResendableLogs interface {
	ListResendable(ctx context.Context, tenantID string, from, to time.Time) ([]model.NotificationLog, error)
	MarkSent(ctx context.Context, id int64, messageID string, sentAt time.Time) error
	IncrementRetry(ctx context.Context, id int64, errMsg string) error
}

type ReminderLogRepository interface {
	LogWriter
	ResendableLogs
	ExistsForDay(ctx context.Context, clientID, templateID int64, from, to time.Time) (bool, error)
}

type InvoiceLogRepository interface {
	LogWriter
	ResendableLogs
	ExistsForInvoice(ctx context.Context, invoiceID int64) (bool, error)
}

type ResellerLogRepository interface {
	Create(ctx context.Context, l *model.NotificationLog) error
	ExistsForDay(ctx context.Context, tenantID string, trigger model.LifecycleTrigger, from, to time.Time) (bool, error)
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}
