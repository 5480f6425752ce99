package services

import (
	"context"
	"log/slog"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/pkg/metrics"
)

// Guard is the idempotency gate. Reserve returns true exactly once per
// request id within the dedup window.
type Guard interface {
	Reserve(ctx context.Context, requestID string) (bool, error)
}

// MessagePublisher publishes a composed message under a routing key.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg *models.PublishedMessage) error
}

// StatusWriter is the best-effort status surface the pipeline writes after a
// publish attempt.
type StatusWriter interface {
	MarkPending(ctx context.Context, notificationID, channel string)
	MarkFailed(ctx context.Context, notificationID, channel, detail string)
}

// DispatchResult is the accepted outcome of a dispatch. Duplicate marks a
// request whose id was already reserved; the original is presumed in flight
// or completed, so duplicates are success-adjacent, not errors.
type DispatchResult struct {
	NotificationID string
	Duplicate      bool
}

// Dispatcher runs the idempotent dispatch pipeline:
// guard → compose → publish → best-effort status write.
type Dispatcher struct {
	guard     Guard
	composer  *Composer
	publisher MessagePublisher
	status    StatusWriter
	logger    *slog.Logger
}

func NewDispatcher(guard Guard, composer *Composer, pub MessagePublisher, status StatusWriter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		guard:     guard,
		composer:  composer,
		publisher: pub,
		status:    status,
		logger:    logger,
	}
}

// Dispatch accepts a validated request. The publish and the status write are
// two independently-failing steps: a failed publish still gets a best-effort
// "failed" status write before the error reaches the caller, and no
// transaction spans the two.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.NotificationRequest) (*DispatchResult, error) {
	created, err := d.guard.Reserve(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if !created {
		metrics.Duplicates.Inc()
		d.logger.Info("duplicate request", slog.String("request_id", req.RequestID))
		return &DispatchResult{NotificationID: req.RequestID, Duplicate: true}, nil
	}

	msg, err := d.composer.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	routingKey, _ := req.NotificationType.RoutingKey()

	if err := d.publisher.Publish(ctx, routingKey, msg); err != nil {
		metrics.PublishFailures.WithLabelValues(routingKey).Inc()
		d.status.MarkFailed(ctx, req.RequestID, routingKey, err.Error())
		d.logger.Error("publish failed",
			slog.String("request_id", req.RequestID),
			slog.String("routing_key", routingKey),
			slog.Any("error", err))
		return nil, err
	}

	metrics.Published.WithLabelValues(routingKey).Inc()
	d.status.MarkPending(ctx, req.RequestID, routingKey)
	d.logger.Info("notification queued",
		slog.String("request_id", req.RequestID),
		slog.String("correlation_id", msg.CorrelationID),
		slog.String("routing_key", routingKey))
	return &DispatchResult{NotificationID: req.RequestID}, nil
}
