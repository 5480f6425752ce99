package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
)

// IdempotencyGuard is a compare-and-set gate over request ids. For a given
// id, at most one Reserve succeeds within the TTL window; after expiry the id
// becomes reservable again, which bounds storage growth and is the documented
// re-delivery window.
type IdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Reserve attempts to claim requestID. It returns true when this call won the
// reservation and false when the id was already claimed within the window.
// The SET NX EX round trip is atomic, so two concurrent calls racing on the
// same id observe exactly one true.
func (g *IdempotencyGuard) Reserve(ctx context.Context, requestID string) (bool, error) {
	created, err := g.client.SetNX(ctx, idemKey(requestID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency reserve: %w: %w", apperr.ErrBackendUnavailable, err)
	}
	return created, nil
}
