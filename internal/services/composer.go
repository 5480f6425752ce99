package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

// maxPublishAttempts is the delivery-retry budget stamped onto every message
// for the consuming workers.
const maxPublishAttempts = 3

// Enricher optionally augments a composed message with fetched user and
// template data before publish. The lean variant (nil enricher) defers all
// lookups to the downstream workers.
type Enricher interface {
	Enrich(ctx context.Context, msg *models.PublishedMessage) error
}

// Composer builds the canonical wire message for a notification request.
type Composer struct {
	enricher Enricher
	now      func() time.Time
	newID    func() string
}

func NewComposer(enricher Enricher) *Composer {
	return &Composer{
		enricher: enricher,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Compose maps the request onto the wire form, assigning a fresh correlation
// id and zeroed attempt counters. Apart from the correlation id and timestamp
// it is a pure function of the request.
func (c *Composer) Compose(ctx context.Context, req *models.NotificationRequest) (*models.PublishedMessage, error) {
	if _, ok := req.NotificationType.RoutingKey(); !ok {
		return nil, fmt.Errorf("unsupported notification type %q", req.NotificationType)
	}

	msg := &models.PublishedMessage{
		RequestID:        req.RequestID,
		CorrelationID:    c.newID(),
		NotificationType: req.NotificationType,
		UserID:           req.UserID,
		TemplateCode:     req.TemplateCode,
		Variables:        req.Variables,
		Priority:         req.Priority,
		Metadata:         req.Metadata,
		Attempt:          0,
		MaxAttempts:      maxPublishAttempts,
		CreatedAt:        c.now().UTC(),
	}

	if c.enricher != nil {
		if err := c.enricher.Enrich(ctx, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}
