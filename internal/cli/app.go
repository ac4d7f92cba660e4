package cli

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/library-api/internal/service/authors"
	"github.com/5w1tchy/library-api/internal/service/catalog"
	"github.com/5w1tchy/library-api/internal/service/covers"
	"github.com/5w1tchy/library-api/internal/service/customers"
	"github.com/5w1tchy/library-api/internal/service/exhibitions"
	"github.com/5w1tchy/library-api/internal/service/loans"
	"github.com/5w1tchy/library-api/internal/service/stats"
	"github.com/5w1tchy/library-api/internal/storage/s3"
	authorstore "github.com/5w1tchy/library-api/internal/store/authors"
	"github.com/5w1tchy/library-api/internal/store/books"
	customerstore "github.com/5w1tchy/library-api/internal/store/customers"
	statstore "github.com/5w1tchy/library-api/internal/store/stats"
	"github.com/5w1tchy/library-api/internal/validate"
	"github.com/redis/go-redis/v9"
)

// App holds the connected services for one CLI invocation.
type App struct {
	DB    *sql.DB
	Redis *redis.Client

	Loans       *loans.Service
	Catalog     *catalog.Service
	Customers   *customers.Service
	Authors     *authors.Service
	Exhibitions *exhibitions.Service
	Stats       *stats.Service
	Covers      *covers.Service // nil without AWS_BUCKET
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := sqlconnect.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{DB: db}

	if cfg.RedisEnabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			db.Close()
			return nil, err
		}
		// an unreachable cache only costs recomputation
		if err := validate.PingRedis(rdb, 2*time.Second); err != nil {
			log.Warn("redis unreachable, stats cache disabled", "err", err)
			rdb.Close()
		} else {
			a.Redis = rdb
		}
	}

	clk, err := cfg.Loans.Clock()
	if err != nil {
		a.Close()
		return nil, err
	}

	var cache *stats.Cache
	if a.Redis != nil {
		cache = stats.NewCache(a.Redis, cfg.Stats.CacheTTL, cfg.Stats.CacheTimeout, log)
	}

	bookStore := books.New(db)
	a.Loans = loans.New(loans.NewPostgresRepo(db), clk, loans.PolicyFrom(cfg.Loans),
		loans.WithLogger(log),
		loans.WithInvalidator(cache),
	)
	a.Catalog = catalog.New(bookStore, log, catalog.WithInvalidator(cache))
	a.Customers = customers.New(customerstore.New(db), log, customers.WithInvalidator(cache))
	a.Authors = authors.New(authorstore.New(db), log)
	a.Exhibitions = exhibitions.New(exhibitions.NewPostgresRepo(db), clk, log)
	a.Stats = stats.New(statstore.New(db), a.Loans, cache)

	if cfg.StorageEnabled() {
		objects, err := s3.New(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Covers = covers.New(bookStore, objects, log)
	}
	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

// newRedis prefers REDIS_URL and falls back to REDIS_ADDR/USER/PASSWORD. TLS only via rediss://.
func newRedis(cfg config.Redis) (*redis.Client, error) {
	if cfg.URL != "" {
		opt, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if strings.HasPrefix(cfg.URL, "rediss://") && opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		opt.DialTimeout = 2 * time.Second
		opt.ReadTimeout = 500 * time.Millisecond
		opt.WriteTimeout = 500 * time.Millisecond
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.User,
		Password:     cfg.Password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}), nil
}
