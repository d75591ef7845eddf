package service

import (
	"sync"
	"time"
)

const (
	statChecks           = "checks"
	statErrors           = "errors"
	statRemindersSent    = "reminders_sent"
	statRemindersFailed  = "reminders_failed"
	statSkippedDuplicate = "skipped_duplicate"
	statReprocessRuns    = "reprocess_runs"
	statInvoicesCreated  = "invoices_generated"
	statNoticesSent      = "notifications_sent"
	statNoticesFailed    = "notifications_failed"
	statReconnects       = "reconnects"
	statReprocessRemote  = "reprocess_remote"
	statReprocessLocal   = "reprocess_local"
)

// Stats holds the cumulative counters of one loop instance since process start.
type Stats struct {
	now     func() time.Time
	started time.Time

	mu       sync.Mutex
	counters map[string]int64
	lastRun  time.Time
}

func NewStats(now func() time.Time, keys ...string) *Stats {
	if now == nil {
		now = time.Now
	}
	s := &Stats{
		now:      now,
		started:  now(),
		counters: make(map[string]int64, len(keys)),
	}
	for _, k := range keys {
		s.counters[k] = 0
	}
	return s
}

func (s *Stats) Add(key string, n int64) {
	s.mu.Lock()
	s.counters[key] += n
	s.mu.Unlock()
}

func (s *Stats) Inc(key string) {
	s.Add(key, 1)
}

func (s *Stats) Get(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key]
}

func (s *Stats) MarkRun() {
	t := s.now()
	s.mu.Lock()
	s.lastRun = t
	s.mu.Unlock()
}

// Snapshot copies the counters and adds last_run.
func (s *Stats) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.counters)+1)
	for k, v := range s.counters {
		out[k] = v
	}
	if s.lastRun.IsZero() {
		out["last_run"] = nil
	} else {
		out["last_run"] = s.lastRun.UTC().Format(time.RFC3339)
	}
	return out
}

func (s *Stats) Uptime() time.Duration {
	return s.now().Sub(s.started)
}
