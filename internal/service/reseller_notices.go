package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/cache"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/phone"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
)

// lifecyclePass selects tenants whose subscription is days away, or already past when expired is set.
type lifecyclePass struct {
	trigger model.LifecycleTrigger
	days    int
	expired bool
}

var lifecyclePasses = []lifecyclePass{
	{trigger: model.Expiring7Days, days: 7},
	{trigger: model.Expiring3Days, days: 3},
	{trigger: model.Expiring1Day, days: 1},
	{trigger: model.Expired, expired: true},
}

func (p lifecyclePass) matches(days int) bool {
	if p.expired {
		return days < 0
	}
	return days == p.days
}

type ResellerNoticeLoopConfig struct {
	Tenants    repo.TenantRepository
	Templates  repo.TemplateRepository
	Logs       repo.ResellerLogRepository
	Marker     cache.SentMarker
	Sender     *Sender
	Instance   string
	RenewalURL string
	Calendar   schedule.Calendar
	Now        func() time.Time
}

// ResellerNoticeLoop tells resellers their own subscription is about to end or has ended.
type ResellerNoticeLoop struct {
	tenants    repo.TenantRepository
	templates  repo.TemplateRepository
	logs       repo.ResellerLogRepository
	marker     cache.SentMarker
	sender     *Sender
	instance   string
	renewalURL string
	cal        schedule.Calendar
	now        func() time.Time
	stats      *Stats
}

func NewResellerNoticeLoop(cfg ResellerNoticeLoopConfig) *ResellerNoticeLoop {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	marker := cfg.Marker
	if marker == nil {
		marker = cache.NoopSentMarker{}
	}
	return &ResellerNoticeLoop{
		tenants:    cfg.Tenants,
		templates:  cfg.Templates,
		logs:       cfg.Logs,
		marker:     marker,
		sender:     cfg.Sender,
		instance:   cfg.Instance,
		renewalURL: cfg.RenewalURL,
		cal:        cfg.Calendar,
		now:        now,
		stats: NewStats(now, statChecks, statNoticesSent, statNoticesFailed,
			statSkippedDuplicate, statErrors),
	}
}

func (l *ResellerNoticeLoop) Stats() *Stats { return l.stats }

func (l *ResellerNoticeLoop) Tick(ctx context.Context) {
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

	for _, p := range lifecyclePasses {
		if ctx.Err() != nil {
			return
		}
		if err := l.runPass(ctx, p, tenants, now, day); err != nil {
			l.stats.Inc(statErrors)
			log.Error("lifecycle pass failed", "trigger", p.trigger, "err", err)
		}
	}
}

func (l *ResellerNoticeLoop) runPass(ctx context.Context, p lifecyclePass, tenants []model.Tenant, now time.Time, day schedule.DayRange) error {
	log := scheduler.Logger(ctx)

	type candidate struct {
		tenant model.Tenant
		days   int
	}
	var due []candidate
	for _, t := range tenants {
		if t.IsAdmin || t.Phone == "" || t.SubscriptionExpiresAt == nil {
			continue
		}
		days := schedule.DaysBetween(now, l.cal.In(*t.SubscriptionExpiresAt))
		if p.matches(days) {
			due = append(due, candidate{tenant: t, days: days})
		}
	}
	if len(due) == 0 {
		return nil
	}

	tmpl, err := l.templates.FindLifecycleTemplate(ctx, p.trigger)
	if errors.Is(err, repo.ErrNotFound) {
		log.Info("no lifecycle template, pass skipped", "trigger", p.trigger, "tenants", len(due))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lifecycle template: %w", err)
	}

	for _, c := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := guard(func() error { return l.notify(ctx, p.trigger, tmpl, c.tenant, c.days, now, day) })
		if err != nil {
			l.stats.Inc(statErrors)
			log.Error("lifecycle notice failed", "tenant", c.tenant.ID, "trigger", p.trigger, "err", err)
		}
	}
	return nil
}

func (l *ResellerNoticeLoop) notify(
	ctx context.Context,
	trigger model.LifecycleTrigger,
	tmpl model.LifecycleTemplate,
	t model.Tenant,
	days int,
	now time.Time,
	day schedule.DayRange,
) error {
	log := scheduler.Logger(ctx)

	key := cache.ResellerKey(t.ID, string(trigger), day.Start)
	if seen, err := l.marker.Seen(ctx, key); err != nil {
		log.Warn("sent marker lookup failed", "key", key, "err", err)
	} else if seen {
		l.stats.Inc(statSkippedDuplicate)
		return nil
	}

	exists, err := l.logs.ExistsForDay(ctx, t.ID, trigger, day.Start, day.End)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		l.stats.Inc(statSkippedDuplicate)
		return nil
	}

	entry := &model.NotificationLog{
		Kind:        model.ResellerLog,
		TenantID:    t.ID,
		TriggerType: trigger,
		Message: ResellerVariables.Render(tmpl.Message, ResellerSubject{
			Tenant:     t,
			Now:        now,
			Days:       days,
			RenewalURL: l.renewalURL,
		}),
		CreatedAt: now,
	}

	number, err := phone.NormalizeLenient(t.Phone)
	if err != nil {
		entry.Phone, entry.Status, entry.ErrorMessage = t.Phone, model.Failed, err.Error()
	} else {
		entry.Phone = number
		res := l.sender.Send(ctx, l.instance, number, entry.Message)
		if res.Success {
			sentAt := l.now()
			entry.Status, entry.MessageID, entry.SentAt = model.Sent, res.MessageID, &sentAt
		} else {
			entry.Status, entry.ErrorMessage = model.Failed, res.Error
		}
	}

	if err := l.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("create reseller log: %w", err)
	}
	if err := l.marker.Mark(ctx, key, now); err != nil {
		log.Warn("sent marker write failed", "key", key, "err", err)
	}

	if entry.Status == model.Sent {
		l.stats.Inc(statNoticesSent)
		log.Info("lifecycle notice sent", "tenant", t.ID, "trigger", trigger, "message_id", entry.MessageID)
	} else {
		l.stats.Inc(statNoticesFailed)
		log.Warn("lifecycle notice failed", "tenant", t.ID, "trigger", trigger, "err", entry.ErrorMessage)
	}

	if number == "" {
		return nil
	}
	return l.sender.Throttle(ctx)
}
