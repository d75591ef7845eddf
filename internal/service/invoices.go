package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/metrics"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/phone"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
)

type InvoiceLoopConfig struct {
	Tenants    repo.TenantRepository
	Clients    repo.ClientRepository
	Templates  repo.TemplateRepository
	Invoices   repo.InvoiceRepository
	Logs       repo.InvoiceLogRepository
	Sender     *Sender
	Calendar   schedule.Calendar
	Now        func() time.Time
	DaysBefore int
}

// InvoiceLoop issues one invoice per client due date inside the lookahead window and
// sends the billing notice for each new invoice.
type InvoiceLoop struct {
	tenants    repo.TenantRepository
	clients    repo.ClientRepository
	templates  repo.TemplateRepository
	invoices   repo.InvoiceRepository
	logs       repo.InvoiceLogRepository
	sender     *Sender
	cal        schedule.Calendar
	now        func() time.Time
	daysBefore int
	stats      *Stats
}

func NewInvoiceLoop(cfg InvoiceLoopConfig) *InvoiceLoop {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &InvoiceLoop{
		tenants:    cfg.Tenants,
		clients:    cfg.Clients,
		templates:  cfg.Templates,
		invoices:   cfg.Invoices,
		logs:       cfg.Logs,
		sender:     cfg.Sender,
		cal:        cfg.Calendar,
		now:        now,
		daysBefore: cfg.DaysBefore,
		stats: NewStats(now, statChecks, statInvoicesCreated, statNoticesSent,
			statNoticesFailed, statErrors),
	}
}

func (l *InvoiceLoop) Stats() *Stats { return l.stats }

func (l *InvoiceLoop) Tick(ctx context.Context) {
	log := scheduler.Logger(ctx)
	l.stats.Inc(statChecks)
	l.stats.MarkRun()

	tenants, err := l.tenants.ListActive(ctx)
	if err != nil {
		l.stats.Inc(statErrors)
		log.Error("list tenants failed", "err", err)
		return
	}

	now := l.cal.In(l.now())

	for _, t := range tenants {
		if ctx.Err() != nil {
			return
		}
		if err := guard(func() error { return l.processTenant(ctx, t, now) }); err != nil {
			l.stats.Inc(statErrors)
			log.Error("invoice tenant failed", "tenant", t.ID, "err", err)
		}
	}
}

func (l *InvoiceLoop) processTenant(ctx context.Context, t model.Tenant, now time.Time) error {
	log := scheduler.Logger(ctx)

	clients, err := l.clients.ListActive(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	for _, c := range clients {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !c.IsActive() {
			continue
		}
		days := schedule.DaysBetween(now, c.RenewalDate)
		if days < 0 || days > l.daysBefore {
			continue
		}
		if err := guard(func() error { return l.processClient(ctx, t, c, now, days) }); err != nil {
			l.stats.Inc(statErrors)
			log.Error("invoice client failed", "tenant", t.ID, "client", c.ID, "err", err)
		}
	}
	return nil
}

func (l *InvoiceLoop) processClient(ctx context.Context, t model.Tenant, c model.Client, now time.Time, days int) error {
	log := scheduler.Logger(ctx)
	due := schedule.DateOnly(c.RenewalDate)

	exists, err := l.invoices.ExistsForDueDate(ctx, c.ID, due)
	if err != nil {
		return fmt.Errorf("invoice lookup: %w", err)
	}
	if exists {
		return nil
	}

	inv := NewInvoice(c, schedule.DateOnly(now), decimal.Zero)
	created, err := l.invoices.Create(ctx, &inv)
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	if !created {
		return nil
	}

	l.stats.Inc(statInvoicesCreated)
	metrics.InvoicesCreated.Inc()
	log.Info("invoice created", "tenant", t.ID, "client", c.ID, "invoice", inv.ID,
		"due_date", due.Format("2006-01-02"), "final_value", inv.FinalValue.StringFixed(2))

	if c.Phone == "" {
		return nil
	}
	return l.notify(ctx, t, c, inv, now, days)
}

// NewInvoice builds the pending invoice for the client's current due date.
func NewInvoice(c model.Client, issued time.Time, discount decimal.Decimal) model.Invoice {
	due := schedule.DateOnly(c.RenewalDate)
	return model.Invoice{
		TenantID:    c.TenantID,
		ClientID:    c.ID,
		IssueDate:   issued,
		DueDate:     due,
		Value:       c.Value,
		Discount:    discount,
		FinalValue:  c.Value.Sub(discount),
		Status:      model.InvoicePending,
		Description: fmt.Sprintf("Mensalidade - %s %d", schedule.MonthName(due.Month()), due.Year()),
	}
}

func (l *InvoiceLoop) notify(ctx context.Context, t model.Tenant, c model.Client, inv model.Invoice, now time.Time, days int) error {
	log := scheduler.Logger(ctx)

	logged, err := l.logs.ExistsForInvoice(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("invoice log lookup: %w", err)
	}
	if logged {
		return nil
	}

	tmpl, err := l.templates.FindInvoiceTemplate(ctx, t.ID)
	if errors.Is(err, repo.ErrNotFound) {
		log.Info("no invoice template, notice skipped", "tenant", t.ID, "invoice", inv.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load invoice template: %w", err)
	}

	subject := InvoiceSubject{
		ClientSubject: ClientSubject{Tenant: t, Client: c, Now: now, Days: days},
		Invoice:       inv,
	}
	entry := &model.NotificationLog{
		Kind:      model.InvoiceLog,
		TenantID:  t.ID,
		ClientID:  c.ID,
		InvoiceID: inv.ID,
		Message:   InvoiceVariables.Render(tmpl.Message, subject),
		CreatedAt: now,
	}

	number, err := phone.NormalizeStrict(c.Phone)
	if err != nil {
		entry.Phone = c.Phone
		if err := l.sender.Reject(ctx, l.logs, entry, err.Error()); err != nil {
			return err
		}
		l.stats.Inc(statNoticesFailed)
		log.Warn("invoice notice rejected", "tenant", t.ID, "invoice", inv.ID, "err", err)
		return nil
	}
	entry.Phone = number

	res, err := l.sender.Deliver(ctx, l.logs, entry, client.InstanceName(t.ID))
	if err != nil {
		return err
	}
	if res.Success {
		l.stats.Inc(statNoticesSent)
		log.Info("invoice notice sent", "tenant", t.ID, "invoice", inv.ID, "message_id", res.MessageID)
	} else {
		l.stats.Inc(statNoticesFailed)
		log.Warn("invoice notice failed", "tenant", t.ID, "invoice", inv.ID, "err", res.Error)
	}

	return l.sender.Throttle(ctx)
}
