package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

type MySQLTemplateRepo struct {
	db *sql.DB
}

func NewMySQLTemplateRepo(db *sql.DB) *MySQLTemplateRepo {
	return &MySQLTemplateRepo{db: db}
}

const templateColumns = `id, reseller_id, name, type, trigger_type, message, is_active,
		       COALESCE(days_offset, 0), send_hour, send_minute, use_global_schedule`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(s rowScanner) (model.Template, error) {
	var t model.Template
	var hour, minute sql.NullInt32
	if err := s.Scan(
		&t.ID,
		&t.TenantID,
		&t.Name,
		&t.Type,
		&t.TriggerType,
		&t.Message,
		&t.IsActive,
		&t.DaysOffset,
		&hour,
		&minute,
		&t.UseGlobalSchedule,
	); err != nil {
		return model.Template{}, err
	}
	if hour.Valid {
		h := int(hour.Int32)
		t.SendHour = &h
	}
	if minute.Valid {
		m := int(minute.Int32)
		t.SendMinute = &m
	}
	return t, nil
}

func (r *MySQLTemplateRepo) ListScheduledReminders(ctx context.Context, tenantID string) ([]model.Template, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM whatsapp_templates
		WHERE reseller_id = ? AND type = ? AND trigger_type = ? AND is_active = 1
		ORDER BY id
	`, tenantID, model.TemplateTypeReminder, model.TriggerScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *MySQLTemplateRepo) FindInvoiceTemplate(ctx context.Context, tenantID string) (model.Template, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM whatsapp_templates
		WHERE reseller_id = ? AND type = ? AND is_active = 1
		ORDER BY id
		LIMIT 1
	`, tenantID, model.TemplateTypeInvoice)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Template{}, ErrNotFound
	}
	return t, err
}

func (r *MySQLTemplateRepo) FindLifecycleTemplate(ctx context.Context, trigger model.LifecycleTrigger) (model.LifecycleTemplate, error) {
	var t model.LifecycleTemplate
	var triggerType string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, trigger_type, message, is_active
		FROM reseller_notification_templates
		WHERE trigger_type = ? AND is_active = 1
		ORDER BY id
		LIMIT 1
	`, string(trigger)).Scan(&t.ID, &triggerType, &t.Message, &t.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LifecycleTemplate{}, ErrNotFound
	}
	if err != nil {
		return model.LifecycleTemplate{}, err
	}
	t.TriggerType = model.LifecycleTrigger(triggerType)
	return t, nil
}

type MySQLSettingsRepo struct {
	db *sql.DB
}

func NewMySQLSettingsRepo(db *sql.DB) *MySQLSettingsRepo {
	return &MySQLSettingsRepo{db: db}
}

func (r *MySQLSettingsRepo) Get(ctx context.Context, tenantID string) (model.ReminderSettings, error) {
	var s model.ReminderSettings
	err := r.db.QueryRowContext(ctx, `
		SELECT reseller_id, is_enabled, COALESCE(start_hour, 0), COALESCE(end_hour, 0), COALESCE(working_days, '')
		FROM reminder_settings
		WHERE reseller_id = ?
		LIMIT 1
	`, tenantID).Scan(&s.TenantID, &s.IsEnabled, &s.StartHour, &s.EndHour, &s.WorkingDays)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReminderSettings{}, ErrNotFound
	}
	return s, err
}
