package service

import (
	"context"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/cache"
	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/metrics"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
)

type ConnectionChecker interface {
	IsConnected(ctx context.Context, instance string) (bool, error)
}

type RemoteReprocessor interface {
	Reprocess(ctx context.Context, tenantID string) error
}

type ConnectionMonitorConfig struct {
	Tenants  repo.TenantRepository
	Gateway  ConnectionChecker
	Remote   RemoteReprocessor
	Local    *Resender
	States   *cache.ConnectionStates
	Calendar schedule.Calendar
	Now      func() time.Time
}

// ConnectionMonitor watches each tenant's gateway session and runs the resend pass when
// one comes back after being down.
type ConnectionMonitor struct {
	tenants repo.TenantRepository
	gateway ConnectionChecker
	remote  RemoteReprocessor
	local   *Resender
	states  *cache.ConnectionStates
	cal     schedule.Calendar
	now     func() time.Time
	stats   *Stats
}

func NewConnectionMonitor(cfg ConnectionMonitorConfig) *ConnectionMonitor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	states := cfg.States
	if states == nil {
		states = cache.NewConnectionStates()
	}
	return &ConnectionMonitor{
		tenants: cfg.Tenants,
		gateway: cfg.Gateway,
		remote:  cfg.Remote,
		local:   cfg.Local,
		states:  states,
		cal:     cfg.Calendar,
		now:     now,
		stats: NewStats(now, statChecks, statReconnects, statReprocessRemote,
			statReprocessLocal, statErrors),
	}
}

func (m *ConnectionMonitor) Stats() *Stats { return m.stats }

func (m *ConnectionMonitor) Tick(ctx context.Context) {
	log := scheduler.Logger(ctx)
	m.stats.Inc(statChecks)
	m.stats.MarkRun()

	tenants, err := m.tenants.ListActive(ctx)
	if err != nil {
		m.stats.Inc(statErrors)
		log.Error("list tenants failed", "err", err)
		return
	}

	today := m.cal.In(m.now())

	for _, t := range tenants {
		if ctx.Err() != nil {
			return
		}
		if !eligibleForMonitoring(t, today) {
			continue
		}
		if err := guard(func() error { m.check(ctx, t); return nil }); err != nil {
			m.stats.Inc(statErrors)
			log.Error("connection check failed", "tenant", t.ID, "err", err)
		}
	}
}

func eligibleForMonitoring(t model.Tenant, today time.Time) bool {
	return t.IsActive && t.WhatsAppEnabled && t.CanUseMessaging(today)
}

func (m *ConnectionMonitor) check(ctx context.Context, t model.Tenant) {
	log := scheduler.Logger(ctx)

	connected, err := m.gateway.IsConnected(ctx, client.InstanceName(t.ID))
	if err != nil {
		log.Warn("connection state unavailable", "tenant", t.ID, "err", err)
		connected = false
	}

	gauge := 0.0
	if connected {
		gauge = 1
	}
	metrics.GatewayConnected.WithLabelValues(t.ID).Set(gauge)

	prev, known := m.states.Swap(t.ID, connected)
	if !known || prev || !connected {
		return
	}

	m.stats.Inc(statReconnects)
	log.Info("gateway reconnected, reprocessing", "tenant", t.ID)
	m.reprocess(ctx, t.ID)
}

func (m *ConnectionMonitor) reprocess(ctx context.Context, tenantID string) {
	log := scheduler.Logger(ctx)

	if m.remote != nil {
		err := m.remote.Reprocess(ctx, tenantID)
		if err == nil {
			m.stats.Inc(statReprocessRemote)
			metrics.ReprocessTotal.WithLabelValues("remote").Inc()
			return
		}
		log.Warn("remote reprocess failed, resending locally", "tenant", tenantID, "err", err)
	}

	if m.local == nil {
		return
	}
	m.stats.Inc(statReprocessLocal)
	metrics.ReprocessTotal.WithLabelValues("local").Inc()
	if _, err := m.local.Run(ctx, tenantID); err != nil {
		m.stats.Inc(statErrors)
		log.Error("local resend failed", "tenant", tenantID, "err", err)
	}
}
