package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
	"github.com/LeventeLantos/reseller-notifier/internal/service"
)

// StatsSource is the observability surface each loop exposes.
type StatsSource interface {
	Snapshot() map[string]any
	Uptime() time.Duration
}

type Reprocessor interface {
	Reprocess(ctx context.Context, tenantID string) (service.ResendResult, error)
}

type SchedulerControl interface {
	Start() bool
	Stop() bool
	IsRunning() bool
	Status() scheduler.Status
}

type Options struct {
	Name        string
	Stats       StatsSource
	Scheduler   SchedulerControl
	Reprocessor Reprocessor
	// ExposeStats adds GET /stats next to /health.
	ExposeStats bool
}

type Handler struct {
	name        string
	stats       StatsSource
	sched       SchedulerControl
	reprocessor Reprocessor
	exposeStats bool
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		name:        opts.Name,
		stats:       opts.Stats,
		sched:       opts.Scheduler,
		reprocessor: opts.Reprocessor,
		exposeStats: opts.ExposeStats,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": h.stats.Uptime().Seconds(),
		"stats":  h.stats.Snapshot(),
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Snapshot())
}

func (h *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	tenantID := strings.TrimSpace(r.PathValue("tenantId"))
	if tenantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "tenantId is required"})
		return
	}

	res, err := h.reprocessor.Reprocess(r.Context(), tenantID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     err.Error(),
			"tenantId":  res.TenantID,
			"attempted": res.Attempted,
			"sent":      res.Sent,
			"failed":    res.Failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.Status())
}

func (h *Handler) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
