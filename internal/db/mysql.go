package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/ecodeclub/ekit/retry"
	"github.com/go-sql-driver/mysql"
)

type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PoolSize int
	Location *time.Location
}

func DSN(o Options) string {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = loc
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open returns a pooled handle. It does not contact the server; use WaitForDB for that.
func Open(o Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(o))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if o.PoolSize > 0 {
		db.SetMaxOpenConns(o.PoolSize)
		db.SetMaxIdleConns(o.PoolSize)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// WaitForDB pings until the store answers or attempts are used up. The caller treats the error as fatal.
func WaitForDB(ctx context.Context, p Pinger, attempts int, initial, max time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	strategy, err := retry.NewExponentialBackoffRetryStrategy(initial, max, int32(attempts-1))
	if err != nil {
		return err
	}

	const timeout = 5 * time.Second
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = p.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		if attempt >= attempts {
			return fmt.Errorf("database unreachable after %d attempt(s): %w", attempt, err)
		}
		next, ok := strategy.Next()
		if !ok {
			return fmt.Errorf("database unreachable after %d attempt(s): %w", attempt, err)
		}
		slog.Warn("database not ready", "attempt", attempt, "retry_in", next.String(), "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(next):
		}
	}
}
