package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	if h.exposeStats {
		mux.HandleFunc("GET /stats", h.Stats)
	}
	if h.reprocessor != nil {
		mux.HandleFunc("POST /reprocess/{tenantId}", h.Reprocess)
	}

	if h.sched != nil {
		mux.HandleFunc("GET /scheduler/status", h.SchedulerStatus)
		mux.HandleFunc("POST /scheduler/start", h.SchedulerStart)
		mux.HandleFunc("POST /scheduler/stop", h.SchedulerStop)
	}

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(h.name))
	})

	return mux
}
