package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NotificationType is the closed set of delivery channels the gateway routes.
type NotificationType string

const (
	TypeEmail NotificationType = "email"
	TypePush  NotificationType = "push"
)

// RoutingKey maps a channel to the routing key used on the direct exchange.
// The mapping is the single source of truth for channel → queue routing;
// validation rejects anything outside the closed set before compose, so an
// unmapped type can never reach the publisher.
func (t NotificationType) RoutingKey() (string, bool) {
	switch t {
	case TypeEmail:
		return "email", true
	case TypePush:
		return "push", true
	}
	return "", false
}

// NotificationRequest is the inbound payload of POST /api/v1/notifications/.
// Identity is RequestID; the struct is never mutated after validation.
type NotificationRequest struct {
	NotificationType NotificationType       `json:"notification_type"`
	UserID           string                 `json:"user_id"`
	TemplateCode     string                 `json:"template_code"`
	Variables        map[string]interface{} `json:"variables"`
	RequestID        string                 `json:"request_id"`
	Priority         int                    `json:"priority"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks the fields the pipeline depends on. It returns the first
// problem found, phrased for the caller-facing envelope.
func (r *NotificationRequest) Validate() error {
	if strings.TrimSpace(r.RequestID) == "" {
		return fmt.Errorf("request_id is required")
	}
	if _, ok := r.NotificationType.RoutingKey(); !ok {
		return fmt.Errorf("notification_type must be one of: email, push")
	}
	if _, err := uuid.Parse(r.UserID); err != nil {
		return fmt.Errorf("user_id must be a valid UUID")
	}
	if strings.TrimSpace(r.TemplateCode) == "" {
		return fmt.Errorf("template_code is required")
	}
	return nil
}

// Lifecycle states tracked for a notification id.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// ValidStatus reports whether s is a state the tracker accepts.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

// StatusRecord is the last-known lifecycle state of a notification.
// Last-write-wins; there is no ordering token, so a stale late write can
// overwrite a newer one.
type StatusRecord struct {
	NotificationID string `json:"notification_id"`
	State          string `json:"state"`
	UpdatedAt      string `json:"updated_at"`
}

// UpdateStatusRequest is the worker callback payload of POST /api/v1/{channel}/status/.
type UpdateStatusRequest struct {
	NotificationID string `json:"notification_id"`
	Status         string `json:"status"`
	// RFC3339 string from workers; the gateway fills it when missing.
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}
