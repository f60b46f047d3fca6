package statscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/model/statistic"
)

const (
	currentTotalsKey = "stats:current"
	cacheTTL         = 60 * time.Second
	dialTimeout      = 5 * time.Second
)

// Cache holds the current-totals aggregate in Redis for the TTL window.
// A nil *Cache is valid and means "no caching": the service degrades to
// direct scans when Redis is unavailable.
type Cache struct {
	client *redis.Client
	log    *slog.Logger
}

func New(addr string, log *slog.Logger) *Cache {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.LogAttrs(ctx,
			slog.LevelWarn,
			"redis unavailable, continuing without stats cache",
			slog.Any(model.KeyLoggerError, err),
		)
		return nil
	}

	return &Cache{client: client, log: log}
}

func (c *Cache) GetCurrentTotals(ctx context.Context) (statistic.Totals, bool) {
	if c == nil {
		return statistic.Totals{}, false
	}

	cached, err := c.client.Get(ctx, currentTotalsKey).Result()
	if err != nil {
		return statistic.Totals{}, false
	}

	var totals statistic.Totals
	if err := json.Unmarshal([]byte(cached), &totals); err != nil {
		return statistic.Totals{}, false
	}
	return totals, true
}

func (c *Cache) SetCurrentTotals(ctx context.Context, totals statistic.Totals) {
	if c == nil {
		return
	}

	data, err := json.Marshal(totals)
	if err != nil {
		return
	}
	if err := c.client.SetEx(ctx, currentTotalsKey, data, cacheTTL).Err(); err != nil {
		c.log.LogAttrs(ctx,
			slog.LevelDebug,
			"failed to cache current totals",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

// Invalidate drops the cached totals; called when a review accepts a
// transaction.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, currentTotalsKey).Err(); err != nil {
		c.log.LogAttrs(ctx,
			slog.LevelDebug,
			"failed to invalidate stats cache",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

func (c *Cache) Close() {
	if c == nil {
		return
	}
	_ = c.client.Close()
}
