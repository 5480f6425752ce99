package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Key namespaces. Idempotency and status live under disjoint prefixes so
// their TTLs and operation semantics never collide.
const (
	idemPrefix   = "idem:"
	statusPrefix = "notify:status:"
)

func idemKey(requestID string) string {
	return idemPrefix + requestID
}

func statusKey(notificationID string) string {
	return statusPrefix + notificationID
}

// NewClient builds a Redis client from a redis:// URL with a bounded
// connection pool and verifies connectivity with a ping. The pool size bounds
// the number of concurrent backend operations.
func NewClient(url string, poolSize int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
