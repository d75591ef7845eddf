package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
)

const shutdownGrace = 5 * time.Second

type process struct {
	name    string
	sched   *scheduler.Scheduler
	port    int
	handler http.Handler
}

// serve runs the loop and, when a handler is set, its status server until ctx is cancelled.
func serve(ctx context.Context, p process) error {
	g, gctx := errgroup.WithContext(ctx)

	p.sched.Start()
	g.Go(func() error {
		<-gctx.Done()
		p.sched.Stop()
		return nil
	})

	if p.handler != nil {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", p.port),
			Handler:           loggingMiddleware(p.handler),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			slog.Info("status server listening", "process", p.name, "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	slog.Info("process stopped", "process", p.name)
	return err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
