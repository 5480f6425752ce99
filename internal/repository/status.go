package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

// StatusStore records the last-known lifecycle state of a notification in a
// Redis hash. Writes are last-write-wins with no ordering token.
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusStore(client *redis.Client, ttl time.Duration) *StatusStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StatusStore{client: client, ttl: ttl}
}

// SetStatus writes state and updated_at and refreshes the TTL in one
// pipelined round trip, so the fields are never observable out of sync with a
// stale expiry.
func (s *StatusStore) SetStatus(ctx context.Context, notificationID, state string) error {
	key := statusKey(notificationID)
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "state", state, "updated_at", now)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("status write for %s: %w: %w", notificationID, apperr.ErrBackendUnavailable, err)
	}
	return nil
}

// GetStatus returns the record for notificationID, or nil when the id is
// unknown or its record has expired.
func (s *StatusStore) GetStatus(ctx context.Context, notificationID string) (*models.StatusRecord, error) {
	fields, err := s.client.HGetAll(ctx, statusKey(notificationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("status read for %s: %w: %w", notificationID, apperr.ErrBackendUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &models.StatusRecord{
		NotificationID: notificationID,
		State:          fields["state"],
		UpdatedAt:      fields["updated_at"],
	}, nil
}
