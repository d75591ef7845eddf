package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/cache"
	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/phone"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
)

type ReminderLoopConfig struct {
	Tenants   repo.TenantRepository
	Clients   repo.ClientRepository
	Templates repo.TemplateRepository
	Settings  repo.SettingsRepository
	Logs      repo.ReminderLogRepository
	Marker    cache.SentMarker
	Sender    *Sender
	Resender  *Resender
	Calendar  schedule.Calendar
	Now       func() time.Time
}

// ReminderLoop sends scheduled reminder templates to end-clients whose due date
// is exactly the template's offset away.
type ReminderLoop struct {
	tenants   repo.TenantRepository
	clients   repo.ClientRepository
	templates repo.TemplateRepository
	settings  repo.SettingsRepository
	logs      repo.ReminderLogRepository
	marker    cache.SentMarker
	sender    *Sender
	resender  *Resender
	cal       schedule.Calendar
	now       func() time.Time
	stats     *Stats
}

func NewReminderLoop(cfg ReminderLoopConfig) *ReminderLoop {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	marker := cfg.Marker
	if marker == nil {
		marker = cache.NoopSentMarker{}
	}
	return &ReminderLoop{
		tenants:   cfg.Tenants,
		clients:   cfg.Clients,
		templates: cfg.Templates,
		settings:  cfg.Settings,
		logs:      cfg.Logs,
		marker:    marker,
		sender:    cfg.Sender,
		resender:  cfg.Resender,
		cal:       cfg.Calendar,
		now:       now,
		stats: NewStats(now, statChecks, statRemindersSent, statRemindersFailed,
			statSkippedDuplicate, statErrors, statReprocessRuns),
	}
}

func (l *ReminderLoop) Stats() *Stats { return l.stats }

func (l *ReminderLoop) Tick(ctx context.Context) {
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
	day := l.cal.Day(now)

	for _, t := range tenants {
		if ctx.Err() != nil {
			return
		}
		if err := guard(func() error { return l.processTenant(ctx, t, now, day) }); err != nil {
			l.stats.Inc(statErrors)
			log.Error("reminder tenant failed", "tenant", t.ID, "err", err)
		}
	}
}

func (l *ReminderLoop) processTenant(ctx context.Context, t model.Tenant, now time.Time, day schedule.DayRange) error {
	log := scheduler.Logger(ctx)

	settings, err := l.settings.Get(ctx, t.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsEnabled {
		return nil
	}

	templates, err := l.templates.ListScheduledReminders(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if len(templates) == 0 {
		log.Info("no scheduled reminder templates", "tenant", t.ID)
		return nil
	}

	clients, err := l.clients.ListActive(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	instance := client.InstanceName(t.ID)

	for _, tmpl := range templates {
		if !tmpl.IsScheduled() {
			continue
		}
		if !schedule.TemplateDue(tmpl, settings, now) {
			continue
		}
		for _, c := range clients {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !c.IsActive() {
				continue
			}
			days := schedule.DaysBetween(now, c.RenewalDate)
			if days != tmpl.DaysOffset {
				continue
			}
			err := guard(func() error {
				return l.processClient(ctx, t, tmpl, c, instance, now, day, days)
			})
			if err != nil {
				l.stats.Inc(statErrors)
				log.Error("reminder send failed", "tenant", t.ID, "client", c.ID, "template", tmpl.ID, "err", err)
			}
		}
	}
	return nil
}

func (l *ReminderLoop) processClient(
	ctx context.Context,
	t model.Tenant,
	tmpl model.Template,
	c model.Client,
	instance string,
	now time.Time,
	day schedule.DayRange,
	days int,
) error {
	log := scheduler.Logger(ctx)

	key := cache.ReminderKey(c.ID, tmpl.ID, day.Start)
	if seen, err := l.marker.Seen(ctx, key); err != nil {
		log.Warn("sent marker lookup failed", "key", key, "err", err)
	} else if seen {
		l.stats.Inc(statSkippedDuplicate)
		return nil
	}

	exists, err := l.logs.ExistsForDay(ctx, c.ID, tmpl.ID, day.Start, day.End)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		l.stats.Inc(statSkippedDuplicate)
		l.mark(ctx, key, now)
		return nil
	}

	entry := &model.NotificationLog{
		Kind:       model.ReminderLog,
		TenantID:   t.ID,
		ClientID:   c.ID,
		TemplateID: tmpl.ID,
		Message:    ReminderVariables.Render(tmpl.Message, ClientSubject{Tenant: t, Client: c, Now: now, Days: days}),
		CreatedAt:  now,
	}

	number, err := phone.NormalizeLenient(c.Phone)
	if err != nil {
		entry.Phone = c.Phone
		if err := l.sender.Reject(ctx, l.logs, entry, err.Error()); err != nil {
			return err
		}
		l.stats.Inc(statRemindersFailed)
		l.mark(ctx, key, now)
		log.Warn("reminder rejected", "tenant", t.ID, "client", c.ID, "template", tmpl.ID, "err", err)
		return nil
	}
	entry.Phone = number

	res, err := l.sender.Deliver(ctx, l.logs, entry, instance)
	if entry.ID != 0 {
		l.mark(ctx, key, now)
	}
	if err != nil {
		return err
	}

	if res.Success {
		l.stats.Inc(statRemindersSent)
		log.Info("reminder sent", "tenant", t.ID, "client", c.ID, "template", tmpl.ID, "message_id", res.MessageID)
	} else {
		l.stats.Inc(statRemindersFailed)
		log.Warn("reminder failed", "tenant", t.ID, "client", c.ID, "template", tmpl.ID, "err", res.Error)
	}

	return l.sender.Throttle(ctx)
}

func (l *ReminderLoop) mark(ctx context.Context, key string, now time.Time) {
	if err := l.marker.Mark(ctx, key, now); err != nil {
		scheduler.Logger(ctx).Warn("sent marker write failed", "key", key, "err", err)
	}
}

// Reprocess runs the resend pass for one tenant on behalf of the connection monitor.
func (l *ReminderLoop) Reprocess(ctx context.Context, tenantID string) (ResendResult, error) {
	l.stats.Inc(statReprocessRuns)
	if l.resender == nil {
		return ResendResult{TenantID: tenantID}, errors.New("resend pass not configured")
	}
	return l.resender.Run(ctx, tenantID)
}
