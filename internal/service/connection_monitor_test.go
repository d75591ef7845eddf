package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LeventeLantos/reseller-notifier/internal/cache"
	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/service"
)

type scriptedGateway struct {
	mu      sync.Mutex
	states  map[string][]bool
	errs    map[string]error
	checked []string
}

func (g *scriptedGateway) IsConnected(_ context.Context, instance string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checked = append(g.checked, instance)
	if err := g.errs[instance]; err != nil {
		delete(g.errs, instance)
		return false, err
	}
	seq := g.states[instance]
	if len(seq) == 0 {
		return false, nil
	}
	g.states[instance] = seq[1:]
	return seq[0], nil
}

type fakeRemote struct {
	err   error
	calls []string
}

func (r *fakeRemote) Reprocess(_ context.Context, tenantID string) error {
	r.calls = append(r.calls, tenantID)
	return r.err
}

func activeTenant(id string) model.Tenant {
	return model.Tenant{ID: id, IsActive: true, WhatsAppEnabled: true, AccountStatus: model.AccountActive}
}

func newMonitor(tenants []model.Tenant, gw service.ConnectionChecker, remote service.RemoteReprocessor, local *service.Resender) *service.ConnectionMonitor {
	cfg := service.ConnectionMonitorConfig{
		Tenants:  &fakeTenants{list: tenants},
		Gateway:  gw,
		Local:    local,
		States:   cache.NewConnectionStates(),
		Calendar: utc,
		Now:      clock,
	}
	if remote != nil {
		cfg.Remote = remote
	}
	return service.NewConnectionMonitor(cfg)
}

func TestConnectionMonitor_FirstObservationOnlySeeds(t *testing.T) {
	gw := &scriptedGateway{states: map[string][]bool{"reseller_7": {true, true}}}
	remote := &fakeRemote{}
	m := newMonitor([]model.Tenant{activeTenant("7")}, gw, remote, nil)

	m.Tick(context.Background())
	m.Tick(context.Background())

	if len(remote.calls) != 0 {
		t.Fatalf("expected no reprocess without a down->up transition, got %v", remote.calls)
	}
}

func TestConnectionMonitor_ReconnectTriggersRemote(t *testing.T) {
	gw := &scriptedGateway{states: map[string][]bool{"reseller_7": {false, true, true}}}
	remote := &fakeRemote{}
	m := newMonitor([]model.Tenant{activeTenant("7")}, gw, remote, nil)

	m.Tick(context.Background())
	m.Tick(context.Background())
	m.Tick(context.Background())

	if len(remote.calls) != 1 || remote.calls[0] != "7" {
		t.Fatalf("expected one remote reprocess for tenant 7, got %v", remote.calls)
	}
	if m.Stats().Get("reconnects") != 1 || m.Stats().Get("reprocess_remote") != 1 {
		t.Fatalf("unexpected stats %v", m.Stats().Snapshot())
	}
}

func TestConnectionMonitor_FallsBackToLocalResend(t *testing.T) {
	reminders := &memReminderLogs{}
	seedFailed(&reminders.memLogs, "7", "5511900000000", 0, fixedNow)

	sendGw := &fakeGateway{}
	local := service.NewResender(service.NewSender(sendGw, "reprocess", 0, clock), utc, clock, reminders)

	gw := &scriptedGateway{states: map[string][]bool{"reseller_7": {false, true}}}
	remote := &fakeRemote{err: errors.New("connection refused")}
	m := newMonitor([]model.Tenant{activeTenant("7")}, gw, remote, local)

	m.Tick(context.Background())
	m.Tick(context.Background())

	if len(remote.calls) != 1 {
		t.Fatalf("expected remote attempt first, got %v", remote.calls)
	}
	if len(sendGw.sent()) != 1 {
		t.Fatalf("expected local resend, got %d sends", len(sendGw.sent()))
	}
	if reminders.all()[0].Status != model.Sent {
		t.Fatalf("expected row to be sent")
	}
	if m.Stats().Get("reprocess_local") != 1 {
		t.Fatalf("unexpected stats %v", m.Stats().Snapshot())
	}
}

func TestConnectionMonitor_GatewayErrorCountsAsDisconnected(t *testing.T) {
	gw := &scriptedGateway{
		states: map[string][]bool{"reseller_7": {true, true}},
		errs:   map[string]error{"reseller_7": client.ErrGatewayUnavailable},
	}
	remote := &fakeRemote{}
	m := newMonitor([]model.Tenant{activeTenant("7")}, gw, remote, nil)

	m.Tick(context.Background()) // error, seeded as disconnected
	m.Tick(context.Background()) // open

	if len(remote.calls) != 1 {
		t.Fatalf("expected reconnect after gateway error, got %v", remote.calls)
	}
}

func TestConnectionMonitor_SkipsIneligibleTenants(t *testing.T) {
	yesterday := daysFromNow(-1)

	expired := activeTenant("1")
	expired.SubscriptionExpiresAt = &yesterday

	suspended := activeTenant("2")
	suspended.AccountStatus = "suspended"

	disabled := activeTenant("3")
	disabled.WhatsAppEnabled = false

	admin := activeTenant("4")
	admin.IsAdmin = true
	admin.AccountStatus = "suspended"
	admin.SubscriptionExpiresAt = &yesterday

	trial := activeTenant("5")
	trial.AccountStatus = model.AccountTrial

	gw := &scriptedGateway{states: map[string][]bool{}}
	m := newMonitor([]model.Tenant{expired, suspended, disabled, admin, trial}, gw, nil, nil)

	m.Tick(context.Background())

	want := []string{"reseller_4", "reseller_5"}
	if len(gw.checked) != len(want) || gw.checked[0] != want[0] || gw.checked[1] != want[1] {
		t.Fatalf("expected %v to be checked, got %v", want, gw.checked)
	}
}
