package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
)

// 2025-01-14 is a Tuesday.
var fixedNow = time.Date(2025, time.January, 14, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

var utc = schedule.CalendarIn(time.UTC)

func daysFromNow(n int) time.Time {
	return time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

type fakeTenants struct {
	list []model.Tenant
	err  error
}

func (f *fakeTenants) ListActive(context.Context) ([]model.Tenant, error) {
	return f.list, f.err
}

type fakeClients struct {
	byTenant map[string][]model.Client
}

func (f *fakeClients) ListActive(_ context.Context, tenantID string) ([]model.Client, error) {
	return f.byTenant[tenantID], nil
}

type fakeTemplates struct {
	reminders map[string][]model.Template
	invoice   map[string]model.Template
	lifecycle map[model.LifecycleTrigger]model.LifecycleTemplate
}

func (f *fakeTemplates) ListScheduledReminders(_ context.Context, tenantID string) ([]model.Template, error) {
	return f.reminders[tenantID], nil
}

func (f *fakeTemplates) FindInvoiceTemplate(_ context.Context, tenantID string) (model.Template, error) {
	t, ok := f.invoice[tenantID]
	if !ok {
		return model.Template{}, repo.ErrNotFound
	}
	return t, nil
}

func (f *fakeTemplates) FindLifecycleTemplate(_ context.Context, trigger model.LifecycleTrigger) (model.LifecycleTemplate, error) {
	t, ok := f.lifecycle[trigger]
	if !ok {
		return model.LifecycleTemplate{}, repo.ErrNotFound
	}
	return t, nil
}

type fakeSettings struct {
	byTenant map[string]model.ReminderSettings
	errFor   map[string]error
}

func (f *fakeSettings) Get(_ context.Context, tenantID string) (model.ReminderSettings, error) {
	if err := f.errFor[tenantID]; err != nil {
		return model.ReminderSettings{}, err
	}
	s, ok := f.byTenant[tenantID]
	if !ok {
		return model.ReminderSettings{}, repo.ErrNotFound
	}
	return s, nil
}

type fakeInvoices struct {
	mu   sync.Mutex
	rows []model.Invoice
}

func (f *fakeInvoices) ExistsForDueDate(_ context.Context, clientID int64, due time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.rows {
		if inv.ClientID == clientID && inv.DueDate.Equal(due) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvoices) Create(_ context.Context, inv *model.Invoice) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *inv)
	return true, nil
}

// memLogs mirrors the log tables. ListResendable leaves the retry bound to the caller.
type memLogs struct {
	mu   sync.Mutex
	rows []model.NotificationLog
}

func (m *memLogs) Create(_ context.Context, l *model.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *l)
	return nil
}

func (m *memLogs) update(id int64, fn func(*model.NotificationLog)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			fn(&m.rows[i])
			return nil
		}
	}
	return errors.New("no such row")
}

func (m *memLogs) MarkSent(_ context.Context, id int64, messageID string, sentAt time.Time) error {
	return m.update(id, func(l *model.NotificationLog) {
		l.Status, l.MessageID, l.SentAt, l.ErrorMessage = model.Sent, messageID, &sentAt, ""
	})
}

func (m *memLogs) MarkFailed(_ context.Context, id int64, errMsg string, retryCount int) error {
	return m.update(id, func(l *model.NotificationLog) {
		l.Status, l.ErrorMessage, l.RetryCount = model.Failed, errMsg, retryCount
	})
}

func (m *memLogs) IncrementRetry(_ context.Context, id int64, errMsg string) error {
	return m.update(id, func(l *model.NotificationLog) {
		l.Status, l.ErrorMessage = model.Failed, errMsg
		l.RetryCount++
	})
}

func (m *memLogs) ListResendable(_ context.Context, tenantID string, from, to time.Time) ([]model.NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.NotificationLog
	for _, l := range m.rows {
		if l.TenantID != tenantID || (l.Status != model.Pending && l.Status != model.Failed) {
			continue
		}
		if l.CreatedAt.Before(from) || !l.CreatedAt.Before(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memLogs) all() []model.NotificationLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.NotificationLog(nil), m.rows...)
}

type memReminderLogs struct{ memLogs }

func (m *memReminderLogs) ExistsForDay(_ context.Context, clientID, templateID int64, from, to time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.rows {
		if l.ClientID == clientID && l.TemplateID == templateID && !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

type memInvoiceLogs struct{ memLogs }

func (m *memInvoiceLogs) ExistsForInvoice(_ context.Context, invoiceID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.rows {
		if l.InvoiceID == invoiceID {
			return true, nil
		}
	}
	return false, nil
}

type memResellerLogs struct{ memLogs }

func (m *memResellerLogs) ExistsForDay(_ context.Context, tenantID string, trigger model.LifecycleTrigger, from, to time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.rows {
		if l.TenantID == tenantID && l.TriggerType == trigger && !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

type sentText struct {
	Instance string
	Number   string
	Text     string
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   []sentText
	failFor map[string]string
}

func (g *fakeGateway) SendText(_ context.Context, instance, number, text string) client.SendResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, sentText{Instance: instance, Number: number, Text: text})
	if msg, ok := g.failFor[number]; ok {
		return client.SendResult{Error: msg}
	}
	return client.SendResult{Success: true, MessageID: "msg-" + number}
}

func (g *fakeGateway) sent() []sentText {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentText(nil), g.calls...)
}

func newClient(id int64, tenantID, name, phone string, due time.Time) model.Client {
	return model.Client{
		ID:          id,
		TenantID:    tenantID,
		Name:        name,
		Phone:       phone,
		Status:      model.ClientActive,
		PlanName:    "Mensal",
		RenewalDate: due,
		Value:       decimal.NewFromInt(35),
	}
}
