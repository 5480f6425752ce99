package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

func testRequest() *models.NotificationRequest {
	return &models.NotificationRequest{
		NotificationType: models.TypeEmail,
		UserID:           "3f2a6f86-5f6a-4d55-9c3e-9e4f8f0a1b2c",
		TemplateCode:     "welcome_email",
		Variables:        map[string]interface{}{"name": "Grace"},
		RequestID:        "r1",
		Priority:         1,
	}
}

func TestComposeLeanMessage(t *testing.T) {
	c := NewComposer(nil)
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	msg, err := c.Compose(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	if msg.Attempt != 0 {
		t.Errorf("attempt = %d, want 0", msg.Attempt)
	}
	if msg.MaxAttempts != 3 {
		t.Errorf("max_attempts = %d, want 3", msg.MaxAttempts)
	}
	if !msg.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", msg.CreatedAt, now)
	}
	if msg.CorrelationID == "" {
		t.Error("correlation id not assigned")
	}
	if msg.RequestID != "r1" || msg.TemplateCode != "welcome_email" || msg.Priority != 1 {
		t.Errorf("request fields not carried: %+v", msg)
	}
	if msg.User != nil || msg.Template != nil {
		t.Error("lean message must not carry enrichment blocks")
	}
}

func TestComposeFreshCorrelationIDPerCall(t *testing.T) {
	c := NewComposer(nil)
	req := testRequest()

	first, err := c.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	second, err := c.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if first.CorrelationID == second.CorrelationID {
		t.Error("correlation id reused across composes")
	}
}

func TestComposeRejectsUnknownChannel(t *testing.T) {
	c := NewComposer(nil)
	req := testRequest()
	req.NotificationType = "sms"
	if _, err := c.Compose(context.Background(), req); err == nil {
		t.Fatal("expected error for unmapped channel")
	}
}

type failingEnricher struct{ err error }

func (f failingEnricher) Enrich(context.Context, *models.PublishedMessage) error { return f.err }

func TestComposeEnricherFailureAborts(t *testing.T) {
	boom := errors.New("lookup down")
	c := NewComposer(failingEnricher{err: boom})
	if _, err := c.Compose(context.Background(), testRequest()); !errors.Is(err, boom) {
		t.Fatalf("expected enricher error, got %v", err)
	}
}
