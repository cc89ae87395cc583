package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/emocare/emocare-backend/internal/logger"
)

// UsageCounter tracks free-tier chat usage per user. The counter feeds the
// upsell trigger in the chat dispatcher.
type UsageCounter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewUsageCounter requires REDIS_ADDR; callers fall back to an in-memory
// counter when redis is not configured.
func NewUsageCounter(log *logger.Logger) (*UsageCounter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_USAGE_PREFIX"))
	if prefix == "" {
		prefix = "chat_usage"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &UsageCounter{
		log:    log.With("service", "RedisUsageCounter"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *UsageCounter) Incr(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := fmt.Sprintf("%s:%s", c.prefix, userID)
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return n, nil
}

func (c *UsageCounter) Close() error {
	return c.rdb.Close()
}
