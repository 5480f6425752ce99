package services

import (
	"context"
	"log/slog"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/repository"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/pkg/metrics"
)

// statusStore is the fast-path tracker surface the recorder writes through.
type statusStore interface {
	SetStatus(ctx context.Context, notificationID, state string) error
	GetStatus(ctx context.Context, notificationID string) (*models.StatusRecord, error)
}

// StatusRecorder routes lifecycle writes to Redis and shadows each write into
// the optional durable history table. The Mark* methods are best-effort: the
// publish outcome, not the status write, decides the caller's response.
type StatusRecorder struct {
	store   statusStore
	history *repository.StatusHistory
	logger  *slog.Logger
}

func NewStatusRecorder(store *repository.StatusStore, history *repository.StatusHistory, logger *slog.Logger) *StatusRecorder {
	return &StatusRecorder{store: store, history: history, logger: logger}
}

// MarkPending records a successful enqueue. Best-effort.
func (s *StatusRecorder) MarkPending(ctx context.Context, notificationID, channel string) {
	s.write(ctx, notificationID, models.StatusPending, channel, "")
}

// MarkFailed records a failed publish. Best-effort.
func (s *StatusRecorder) MarkFailed(ctx context.Context, notificationID, channel, detail string) {
	s.write(ctx, notificationID, models.StatusFailed, channel, detail)
}

func (s *StatusRecorder) write(ctx context.Context, id, state, channel, detail string) {
	if err := s.store.SetStatus(ctx, id, state); err != nil {
		s.logger.Error("status write failed",
			slog.String("notification_id", id),
			slog.String("state", state),
			slog.Any("error", err))
		return
	}
	metrics.StatusUpdates.WithLabelValues(state).Inc()
	s.shadow(ctx, id, state, channel, detail)
}

// Update is the strict write path used by worker callbacks: a backend failure
// propagates so the callback can answer 500.
func (s *StatusRecorder) Update(ctx context.Context, notificationID, state, channel, detail string) error {
	if err := s.store.SetStatus(ctx, notificationID, state); err != nil {
		return err
	}
	metrics.StatusUpdates.WithLabelValues(state).Inc()
	s.shadow(ctx, notificationID, state, channel, detail)
	return nil
}

// Get returns the last-known record, or nil when unknown.
func (s *StatusRecorder) Get(ctx context.Context, notificationID string) (*models.StatusRecord, error) {
	return s.store.GetStatus(ctx, notificationID)
}

func (s *StatusRecorder) shadow(ctx context.Context, id, state, channel, detail string) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, id, state, channel, detail); err != nil {
		s.logger.Warn("status history write failed",
			slog.String("notification_id", id),
			slog.Any("error", err))
	}
}
