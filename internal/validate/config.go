package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// Env validates the resolved configuration. Fail-fast on bad config.
func Env(cfg *config.Config) error {
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return errors.New("DATABASE_URL not set")
	}
	if cfg.Loans.PeriodDays < 1 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be >= 1 (got %d)", cfg.Loans.PeriodDays)
	}
	if cfg.Loans.ExtensionDays < 0 {
		return fmt.Errorf("LOAN_EXTENSION_DAYS must be >= 0 (got %d)", cfg.Loans.ExtensionDays)
	}
	if cfg.Loans.MaxBooksPerUser < 1 {
		return fmt.Errorf("MAX_BOOKS_PER_USER must be >= 1 (got %d)", cfg.Loans.MaxBooksPerUser)
	}
	if _, err := cfg.Loans.Clock(); err != nil {
		return err
	}
	if cfg.Stats.CacheTTL <= 0 {
		return errors.New("STATS_CACHE_TTL must be a positive duration")
	}
	if _, err := CronSchedule(cfg.Worker.OverdueSchedule); err != nil {
		return fmt.Errorf("OVERDUE_REPORT_SCHEDULE: %w", err)
	}
	if cfg.Storage.Bucket != "" && (cfg.Storage.AccessKeyID == "" || cfg.Storage.SecretAccessKey == "") {
		return errors.New("AWS_BUCKET set without AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY")
	}
	return nil
}

// HardeningWarnings returns non-fatal warnings you may want to log on startup.
func HardeningWarnings(cfg *config.Config) []string {
	var warns []string

	if cfg.Loans.UseSystemDate {
		warns = append(warns, fmt.Sprintf("USE_SYSTEM_DATE is on; all loan dates use SYSTEM_DATE=%s instead of today", cfg.Loans.SystemDate))
	}
	if cfg.Loans.PeriodDays > 60 {
		warns = append(warns, fmt.Sprintf("LOAN_PERIOD_DAYS=%d is unusually long", cfg.Loans.PeriodDays))
	}
	if !cfg.RedisEnabled() {
		warns = append(warns, "no REDIS_URL/REDIS_ADDR; statistics are computed on every call")
	}

	if strings.EqualFold(cfg.AppEnv, "production") {
		if cfg.Loans.UseSystemDate {
			warns = append(warns, "USE_SYSTEM_DATE must not be enabled in production")
		}
		if u := cfg.Redis.URL; u != "" && strings.HasPrefix(u, "redis://") {
			warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if cfg.Redis.URL == "" && cfg.Redis.Addr != "" && cfg.Redis.Password == "" {
			warns = append(warns, "REDIS_ADDR provided without REDIS_PASSWORD; require auth in production")
		}
	}
	return warns
}

// CronSchedule parses a five-field cron spec the same way the worker does.
func CronSchedule(spec string) (cron.Schedule, error) {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(spec)
}

// PingRedis checks connectivity with a short timeout.
func PingRedis(rdb *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := rdb.Ping(ctx).Result()
	return err
}
