package stats

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const (
	SummaryKey = "stats:summary"

	defaultTTL     = 30 * time.Second
	defaultTimeout = 150 * time.Millisecond
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache keeps the summary in redis. A nil client disables it; redis errors fail open
// and are logged once until the next successful call.
type Cache struct {
	rdb     redis.UniversalClient
	ttl     time.Duration
	shortTO time.Duration
	log     *slog.Logger
	warned  atomic.Bool
}

func NewCache(rdb redis.UniversalClient, ttl, timeout time.Duration, log *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{rdb: rdb, ttl: ttl, shortTO: timeout, log: log.With("component", "stats-cache")}
}

func (c *Cache) enabled() bool { return c != nil && c.rdb != nil }

// Get returns the cached summary; ok is false on miss, decode failure or redis error.
func (c *Cache) Get(ctx context.Context) (models.Stats, bool) {
	if !c.enabled() {
		return models.Stats{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, c.shortTO)
	defer cancel()

	raw, err := c.rdb.Get(ctx, SummaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Stats{}, false
	}
	if err != nil {
		c.warnOnce("cache get failed; bypassing", err)
		return models.Stats{}, false
	}
	var st models.Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		c.warnOnce("cached summary undecodable; bypassing", err)
		return models.Stats{}, false
	}
	c.warned.Store(false)
	return st, true
}

func (c *Cache) Set(ctx context.Context, st models.Stats) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		c.warnOnce("encode summary failed", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.shortTO)
	defer cancel()
	if err := c.rdb.SetEx(ctx, SummaryKey, raw, c.ttl).Err(); err != nil {
		c.warnOnce("cache set failed", err)
	}
}

// Invalidate drops the summary; call after a committed loan write.
func (c *Cache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.shortTO)
	defer cancel()
	if err := c.rdb.Del(ctx, SummaryKey).Err(); err != nil {
		c.warnOnce("cache invalidate failed", err)
	}
}

func (c *Cache) warnOnce(msg string, err error) {
	if c.warned.Swap(true) {
		return
	}
	c.log.Warn(msg, "key", SummaryKey, "err", err)
}
