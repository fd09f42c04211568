package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/luckydraw/backend/internal/models"
)

const ticketCachePrefix = "ticket:"

// ErrCacheDisabled is reported by the health check when no cache is configured
var ErrCacheDisabled = errors.New("ticket cache disabled")

// TicketCache remembers which account owns a ticket. Only positive
// lookups are cached; writers invalidate the tickets they touch.
type TicketCache interface {
	Get(ctx context.Context, ticketNumber string) (*models.AccountSummary, bool)
	Set(ctx context.Context, ticketNumber string, owner models.AccountSummary)
	Invalidate(ctx context.Context, ticketNumbers ...string)
	Ping(ctx context.Context) error
}

// NoopTicketCache is used when Redis is not available
type NoopTicketCache struct{}

func (NoopTicketCache) Get(context.Context, string) (*models.AccountSummary, bool) { return nil, false }
func (NoopTicketCache) Set(context.Context, string, models.AccountSummary)        {}
func (NoopTicketCache) Invalidate(context.Context, ...string)                     {}
func (NoopTicketCache) Ping(context.Context) error                                { return ErrCacheDisabled }

// RedisTicketCache stores ticket owners in Redis with a TTL
type RedisTicketCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewTicketCache returns a Redis backed cache, or NoopTicketCache when
// rdb is nil or ttl is zero.
func NewTicketCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) TicketCache {
	if rdb == nil || ttl <= 0 {
		return NoopTicketCache{}
	}
	return &RedisTicketCache{
		redis:  rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func ticketCacheKey(ticketNumber string) string {
	return ticketCachePrefix + ticketNumber
}

// Get returns the cached owner. Cache failures count as a miss.
func (c *RedisTicketCache) Get(ctx context.Context, ticketNumber string) (*models.AccountSummary, bool) {
	data, err := c.redis.Get(ctx, ticketCacheKey(ticketNumber)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("ticket cache read failed", "ticket", ticketNumber, "error", err)
		return nil, false
	}

	var owner models.AccountSummary
	if err := json.Unmarshal(data, &owner); err != nil {
		c.logger.Warn("ticket cache entry corrupt", "ticket", ticketNumber, "error", err)
		c.Invalidate(ctx, ticketNumber)
		return nil, false
	}

	return &owner, true
}

// Set records the owner of a ticket
func (c *RedisTicketCache) Set(ctx context.Context, ticketNumber string, owner models.AccountSummary) {
	data, err := json.Marshal(owner)
	if err != nil {
		c.logger.Warn("ticket cache encode failed", "ticket", ticketNumber, "error", err)
		return
	}

	if err := c.redis.Set(ctx, ticketCacheKey(ticketNumber), data, c.ttl).Err(); err != nil {
		c.logger.Warn("ticket cache write failed", "ticket", ticketNumber, "error", err)
	}
}

// Invalidate drops cached owners for the given tickets
func (c *RedisTicketCache) Invalidate(ctx context.Context, ticketNumbers ...string) {
	if len(ticketNumbers) == 0 {
		return
	}

	keys := make([]string, len(ticketNumbers))
	for i, t := range ticketNumbers {
		keys[i] = ticketCacheKey(t)
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("ticket cache invalidation failed", "tickets", ticketNumbers, "error", err)
	}
}

// Ping checks the Redis connection
func (c *RedisTicketCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}
