package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

var templateCols = []string{
	"id", "reseller_id", "name", "type", "trigger_type", "message", "is_active",
	"days_offset", "send_hour", "send_minute", "use_global_schedule",
}

func TestMySQLTemplateRepo_ListScheduledReminders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM whatsapp_templates").
		WithArgs("7", model.TemplateTypeReminder, model.TriggerScheduled).
		WillReturnRows(sqlmock.NewRows(templateCols).
			AddRow(int64(1), "7", "D-3", "reminder", "scheduled", "Oi {nome}", true, int64(3), nil, nil, true).
			AddRow(int64(2), "7", "D0", "reminder", "scheduled", "Hoje", true, int64(0), int64(9), int64(30), false))

	got, err := NewMySQLTemplateRepo(db).ListScheduledReminders(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, 3, got[0].DaysOffset)
	require.Nil(t, got[0].SendHour)
	require.True(t, got[0].UseGlobalSchedule)

	require.NotNil(t, got[1].SendHour)
	require.Equal(t, 9, *got[1].SendHour)
	require.Equal(t, 30, *got[1].SendMinute)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTemplateRepo_FindInvoiceTemplate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM whatsapp_templates").
		WithArgs("7", model.TemplateTypeInvoice).
		WillReturnError(sql.ErrNoRows)

	_, err = NewMySQLTemplateRepo(db).FindInvoiceTemplate(context.Background(), "7")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMySQLTemplateRepo_FindLifecycleTemplate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM reseller_notification_templates").
		WithArgs("expiring_7days").
		WillReturnRows(sqlmock.NewRows([]string{"id", "trigger_type", "message", "is_active"}).
			AddRow(int64(4), "expiring_7days", "Olá {revenda_nome}", true))

	got, err := NewMySQLTemplateRepo(db).FindLifecycleTemplate(context.Background(), model.Expiring7Days)
	require.NoError(t, err)
	require.Equal(t, model.Expiring7Days, got.TriggerType)
	require.Equal(t, "Olá {revenda_nome}", got.Message)
}

func TestMySQLSettingsRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM reminder_settings").
		WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"reseller_id", "is_enabled", "start_hour", "end_hour", "working_days"}).
			AddRow("7", true, int64(8), int64(18), "1,2,3,4,5"))
	mock.ExpectQuery("FROM reminder_settings").
		WithArgs("9").
		WillReturnError(sql.ErrNoRows)

	repo := NewMySQLSettingsRepo(db)

	s, err := repo.Get(context.Background(), "7")
	require.NoError(t, err)
	require.Equal(t, model.ReminderSettings{TenantID: "7", IsEnabled: true, StartHour: 8, EndHour: 18, WorkingDays: "1,2,3,4,5"}, s)

	_, err = repo.Get(context.Background(), "9")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
