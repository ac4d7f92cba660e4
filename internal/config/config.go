package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/clock"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultLoanPeriodDays  = 14
	DefaultExtensionDays   = 7
	DefaultMaxBooksPerUser = 5
)

type (
	Config struct {
		AppEnv   string
		Database Database
		Loans    Loans
		Redis    Redis
		Stats    Stats
		Storage  Storage
		Worker   Worker
		Log      Log
	}

	Database struct {
		URL             string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxIdleTime time.Duration
		ConnMaxLifetime time.Duration
		PingTimeout     time.Duration
	}

	Loans struct {
		PeriodDays      int
		ExtensionDays   int
		MaxBooksPerUser int
		UseSystemDate   bool   // when true, SystemDate replaces the wall clock
		SystemDate      string // YYYY-MM-DD
		Timezone        string
	}

	Redis struct {
		URL      string
		Addr     string
		User     string
		Password string
	}

	Stats struct {
		CacheTTL     time.Duration
		CacheTimeout time.Duration
	}

	Storage struct {
		Endpoint        string
		Region          string
		Bucket          string
		AccessKeyID     string
		SecretAccessKey string
		PresignTTL      time.Duration
	}

	Worker struct {
		OverdueSchedule string // cron: minute hour dom month dow
		WarmStats       bool
	}

	Log struct {
		Level string
	}
)

// Load reads .env files (missing files are fine) and resolves the config from the environment.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", "development")

	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_idle_time", "5m")
	v.SetDefault("db_conn_max_lifetime", "30m")
	v.SetDefault("db_ping_timeout", "3s")

	v.SetDefault("loan_period_days", DefaultLoanPeriodDays)
	v.SetDefault("loan_extension_days", DefaultExtensionDays)
	v.SetDefault("max_books_per_user", DefaultMaxBooksPerUser)
	v.SetDefault("use_system_date", false)
	v.SetDefault("system_date", "")
	v.SetDefault("library_timezone", "Local")

	v.SetDefault("stats_cache_ttl", "30s")
	v.SetDefault("stats_cache_timeout", "150ms")

	v.SetDefault("aws_presign_ttl", "15m")

	v.SetDefault("overdue_report_schedule", "0 7 * * *") // daily at 07:00
	v.SetDefault("worker_warm_stats", true)

	v.SetDefault("log_level", "info")

	cfg := &Config{
		AppEnv: v.GetString("APP_ENV"),
		Database: Database{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			PingTimeout:     v.GetDuration("DB_PING_TIMEOUT"),
		},
		Loans: Loans{
			PeriodDays:      v.GetInt("LOAN_PERIOD_DAYS"),
			ExtensionDays:   v.GetInt("LOAN_EXTENSION_DAYS"),
			MaxBooksPerUser: v.GetInt("MAX_BOOKS_PER_USER"),
			UseSystemDate:   v.GetBool("USE_SYSTEM_DATE"),
			SystemDate:      strings.TrimSpace(v.GetString("SYSTEM_DATE")),
			Timezone:        v.GetString("LIBRARY_TIMEZONE"),
		},
		Redis: Redis{
			URL:      v.GetString("REDIS_URL"),
			Addr:     v.GetString("REDIS_ADDR"),
			User:     v.GetString("REDIS_USER"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Stats: Stats{
			CacheTTL:     v.GetDuration("STATS_CACHE_TTL"),
			CacheTimeout: v.GetDuration("STATS_CACHE_TIMEOUT"),
		},
		Storage: Storage{
			Endpoint:        v.GetString("AWS_ENDPOINT"),
			Region:          v.GetString("AWS_REGION"),
			Bucket:          v.GetString("AWS_BUCKET"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			PresignTTL:      v.GetDuration("AWS_PRESIGN_TTL"),
		},
		Worker: Worker{
			OverdueSchedule: v.GetString("OVERDUE_REPORT_SCHEDULE"),
			WarmStats:       v.GetBool("WORKER_WARM_STATS"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
	if _, err := cfg.Loans.Clock(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves Loans.Timezone, falling back to time.Local.
func (l Loans) Location() *time.Location {
	if l.Timezone == "" || strings.EqualFold(l.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Clock builds the reference-date source for loan arithmetic.
func (l Loans) Clock() (clock.Clock, error) {
	if !l.UseSystemDate {
		return clock.New(false, time.Time{}, l.Location()), nil
	}
	day, err := models.ParseDate(l.SystemDate)
	if err != nil {
		return nil, fmt.Errorf("SYSTEM_DATE %q: %w", l.SystemDate, err)
	}
	return clock.New(true, day, nil), nil
}

// StorageEnabled reports whether enough AWS_* settings are present for cover uploads.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Bucket != "" && c.Storage.AccessKeyID != "" && c.Storage.SecretAccessKey != ""
}

// RedisEnabled reports whether a stats cache should be wired.
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != "" || c.Redis.Addr != ""
}

func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
