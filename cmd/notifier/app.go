package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/reseller-notifier/internal/cache"
	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/config"
	"github.com/LeventeLantos/reseller-notifier/internal/db"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
	"github.com/LeventeLantos/reseller-notifier/internal/service"
)

const sendDelay = time.Second

// app holds what every subcommand shares: config, the store, the gateway and the optional cache.
type app struct {
	cfg     *config.Config
	cal     schedule.Calendar
	db      *sql.DB
	rdb     *redis.Client
	gateway *client.GatewayClient
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cal, err := schedule.NewCalendar(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(db.Options{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		PoolSize: cfg.Database.PoolSize,
		Location: cal.Location(),
	})
	if err != nil {
		return nil, err
	}
	if err := db.WaitForDB(ctx, conn, cfg.Database.ConnectRetries, time.Second, 10*time.Second); err != nil {
		_ = conn.Close()
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		cal:     cal,
		db:      conn,
		gateway: client.NewGatewayClient(cfg.Gateway.URL, cfg.Gateway.APIKey),
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, continuing without sent-marker cache", "addr", cfg.Redis.Address, "err", err)
			_ = rdb.Close()
		} else {
			a.rdb = rdb
		}
	}

	slog.Info("notifier ready",
		"timezone", cfg.Timezone,
		"db", cfg.Database.Host,
		"redis", a.rdb != nil,
	)
	return a, nil
}

func (a *app) marker() cache.SentMarker {
	if a.rdb == nil {
		return cache.NoopSentMarker{}
	}
	return cache.NewRedisSentMarker(a.rdb, a.cfg.Redis.TTL)
}

// resender covers every end-client log table that can hold retryable rows.
func (a *app) resender(sender *service.Sender) *service.Resender {
	return service.NewResender(sender, a.cal, time.Now,
		repo.NewMySQLReminderLogRepo(a.db),
		repo.NewMySQLInvoiceLogRepo(a.db),
	)
}

func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			slog.Warn("redis close failed", "err", err)
		}
	}
	if err := a.db.Close(); err != nil {
		slog.Warn("db close failed", "err", err)
	}
}
