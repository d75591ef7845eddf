package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/LeventeLantos/reseller-notifier/internal/metrics"
)

type loggerKey struct{}

// Logger returns the tick-scoped logger carrying name and run_id, or the default logger.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Scheduler runs tickFn once on Start and then again interval after each tick returns.
// Ticks never overlap.
type Scheduler struct {
	name     string
	interval time.Duration
	tickFn   func(context.Context)

	running atomic.Bool
	lastRun atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Status struct {
	Name     string     `json:"name"`
	Running  bool       `json:"running"`
	Interval string     `json:"interval"`
	LastRun  *time.Time `json:"lastRun,omitempty"`
}

func New(name string, interval time.Duration, tickFn func(context.Context)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		tickFn:   tickFn,
		done:     make(chan struct{}),
	}, nil
}

func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go func() {
		defer close(s.done)

		slog.Info("scheduler started", "loop", s.name, "interval", s.interval.String())

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("scheduler stopping", "loop", s.name)
				return
			case <-timer.C:
				s.safeTick(ctx)
				timer.Reset(s.interval)
			}
		}
	}()

	return true
}

func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	slog.Info("scheduler stopped", "loop", s.name)
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Status() Status {
	st := Status{
		Name:     s.name,
		Running:  s.running.Load(),
		Interval: s.interval.String(),
	}
	if ns := s.lastRun.Load(); ns != 0 {
		t := time.Unix(0, ns).UTC()
		st.LastRun = &t
	}
	return st
}

func (s *Scheduler) safeTick(ctx context.Context) {
	log := slog.Default().With("loop", s.name, "run_id", uuid.NewString())
	ctx = context.WithValue(ctx, loggerKey{}, log)

	start := time.Now()
	s.lastRun.Store(start.UnixNano())

	defer func() {
		if r := recover(); r != nil {
			log.Error("scheduler tick panic recovered", "panic", r)
		}
		metrics.TickDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	}()

	s.tickFn(ctx)
	log.Info("scheduler tick completed", "duration_ms", time.Since(start).Milliseconds())
}
