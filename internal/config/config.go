package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Gateway   GatewayConfig
	Reprocess ReprocessConfig

	Timezone   string
	RenewalURL string
}

type ServerConfig struct {
	ReminderPort int
	InvoicePort  int
	ResellerPort int
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	PoolSize       int
	ConnectRetries int
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type SchedulerConfig struct {
	// CheckInterval overrides every loop's own default when set.
	CheckInterval      time.Duration
	ConnectionInterval time.Duration
	InvoiceDaysBefore  int

	checkIntervalSet bool
}

type GatewayConfig struct {
	URL      string
	APIKey   string
	Instance string
}

type ReprocessConfig struct {
	BaseURL string
}

// IntervalOr returns the configured check interval, or def when none was set.
func (c SchedulerConfig) IntervalOr(def time.Duration) time.Duration {
	if c.CheckInterval > 0 {
		return c.CheckInterval
	}
	return def
}

func LoadAll() (*Config, error) {
	var errs []error

	str := func(key string) string {
		v, err := requireEnv(key)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	num := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			ReminderPort: num("REMINDER_STATUS_PORT", 3002),
			InvoicePort:  num("INVOICE_STATUS_PORT", 3003),
			ResellerPort: num("RESELLER_WHATSAPP_PROCESSOR_PORT", 3004),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           num("DB_PORT", 3306),
			User:           getEnv("DB_USER", "root"),
			Password:       os.Getenv("DB_PASS"),
			Name:           str("DB_NAME"),
			PoolSize:       num("DB_POOL_SIZE", 10),
			ConnectRetries: num("DB_CONNECT_RETRIES", 3),
		},
		Gateway: GatewayConfig{
			URL:      str("WHATSAPP_API_URL"),
			APIKey:   str("WHATSAPP_API_KEY"),
			Instance: getEnv("WHATSAPP_INSTANCE", "admin"),
		},
		Scheduler: SchedulerConfig{
			CheckInterval:      time.Duration(num("CHECK_INTERVAL_MINUTES", 0)) * time.Minute,
			checkIntervalSet:   os.Getenv("CHECK_INTERVAL_MINUTES") != "",
			ConnectionInterval: time.Duration(num("CONNECTION_CHECK_INTERVAL", 30)) * time.Second,
			InvoiceDaysBefore:  num("INVOICE_DAYS_BEFORE", 10),
		},
		Timezone:   getEnv("APP_TIMEZONE", schedule.DefaultTimezone),
		RenewalURL: os.Getenv("RENEWAL_URL"),
	}

	cfg.Redis, errs = loadRedisConfig(errs)
	cfg.Reprocess.BaseURL = getEnv("REPROCESS_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Server.ReminderPort))

	errs = append(errs, validate(cfg)...)
	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig(errs []error) (RedisConfig, []error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, errs
	}

	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		errs = append(errs, err)
	}
	ttl, err := getEnvInt("REDIS_TTL_SECONDS", 129600)
	if err != nil {
		errs = append(errs, err)
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttl) * time.Second,
	}, errs
}

func validate(cfg *Config) []error {
	var errs []error
	for key, port := range map[string]int{
		"REMINDER_STATUS_PORT":             cfg.Server.ReminderPort,
		"INVOICE_STATUS_PORT":              cfg.Server.InvoicePort,
		"RESELLER_WHATSAPP_PROCESSOR_PORT": cfg.Server.ResellerPort,
		"DB_PORT":                          cfg.Database.Port,
	} {
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s must be in 1..65535", key))
		}
	}
	if cfg.Database.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("DB_POOL_SIZE must be > 0"))
	}
	if cfg.Database.ConnectRetries <= 0 {
		errs = append(errs, fmt.Errorf("DB_CONNECT_RETRIES must be > 0"))
	}
	if cfg.Scheduler.checkIntervalSet && cfg.Scheduler.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("CHECK_INTERVAL_MINUTES must be > 0"))
	}
	if cfg.Scheduler.ConnectionInterval <= 0 {
		errs = append(errs, fmt.Errorf("CONNECTION_CHECK_INTERVAL must be > 0"))
	}
	if cfg.Scheduler.InvoiceDaysBefore < 0 {
		errs = append(errs, fmt.Errorf("INVOICE_DAYS_BEFORE must be >= 0"))
	}
	if cfg.Redis.Enabled && cfg.Redis.TTL <= 0 {
		errs = append(errs, fmt.Errorf("REDIS_TTL_SECONDS must be > 0"))
	}
	if _, err := schedule.NewCalendar(cfg.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}
	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func joinErrors(errs []error) error {
	var merr *multierror.Error
	for _, err := range errs {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
