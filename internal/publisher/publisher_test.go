package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/streadway/amqp"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

type fakePubChannel struct {
	confirms chan amqp.Confirmation
	returns  chan amqp.Return

	publishErr error
	nack       bool
	unroutable bool

	tag       uint64
	published []amqp.Publishing
	mandatory bool
}

func (f *fakePubChannel) Confirm(noWait bool) error { return nil }

func (f *fakePubChannel) NotifyPublish(c chan amqp.Confirmation) chan amqp.Confirmation {
	f.confirms = c
	return c
}

func (f *fakePubChannel) NotifyReturn(c chan amqp.Return) chan amqp.Return {
	f.returns = c
	return c
}

func (f *fakePubChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	f.mandatory = mandatory
	f.tag++
	if f.unroutable {
		f.returns <- amqp.Return{MessageId: msg.MessageId, ReplyText: "NO_ROUTE"}
	}
	f.confirms <- amqp.Confirmation{DeliveryTag: f.tag, Ack: !f.nack}
	return nil
}

func testMessage() *models.PublishedMessage {
	return &models.PublishedMessage{
		RequestID:        "r1",
		CorrelationID:    "c1",
		NotificationType: models.TypeEmail,
		Attempt:          0,
		MaxAttempts:      3,
	}
}

func startPublisher(t *testing.T, ch *fakePubChannel) *Publisher {
	t.Helper()
	p := NewPublisher("notifications.direct", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = p.Run(ctx, ch) }()
	return p
}

func TestPublishSuccess(t *testing.T) {
	ch := &fakePubChannel{}
	p := startPublisher(t, ch)

	if err := p.Publish(context.Background(), "email", testMessage()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	got := ch.published[0]
	if !ch.mandatory {
		t.Error("publish must be mandatory so unroutable messages are reported")
	}
	if got.ContentType != "application/json" {
		t.Errorf("content type = %q", got.ContentType)
	}
	if got.CorrelationId != "c1" {
		t.Errorf("correlation id = %q, want c1", got.CorrelationId)
	}
	if got.MessageId == "" {
		t.Error("message id not attached")
	}
	if got.DeliveryMode != amqp.Persistent {
		t.Error("message not persistent")
	}
}

func TestPublishNackIsRejected(t *testing.T) {
	ch := &fakePubChannel{nack: true}
	p := startPublisher(t, ch)

	err := p.Publish(context.Background(), "email", testMessage())
	if !errors.Is(err, apperr.ErrPublishRejected) {
		t.Fatalf("expected publish rejection, got %v", err)
	}
}

func TestPublishUnroutableIsRejected(t *testing.T) {
	ch := &fakePubChannel{unroutable: true}
	p := startPublisher(t, ch)

	err := p.Publish(context.Background(), "email", testMessage())
	if !errors.Is(err, apperr.ErrPublishRejected) {
		t.Fatalf("expected rejection for unroutable message, got %v", err)
	}
}

func TestPublishTransportFailure(t *testing.T) {
	ch := &fakePubChannel{publishErr: errors.New("channel closed")}
	p := startPublisher(t, ch)

	err := p.Publish(context.Background(), "email", testMessage())
	if !errors.Is(err, apperr.ErrBrokerUnreachable) {
		t.Fatalf("expected broker unreachable, got %v", err)
	}
}

func TestPublishSerializationFailure(t *testing.T) {
	p := NewPublisher("notifications.direct", discardLogger())

	msg := testMessage()
	msg.Variables = map[string]interface{}{"bad": make(chan int)}
	err := p.Publish(context.Background(), "email", msg)
	if !errors.Is(err, apperr.ErrSerialization) {
		t.Fatalf("expected serialization error, got %v", err)
	}
}

func TestPublishSerializedThroughSingleWriter(t *testing.T) {
	ch := &fakePubChannel{}
	p := startPublisher(t, ch)

	const n = 8
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			done <- p.Publish(context.Background(), "push", testMessage())
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent publish failed: %v", err)
		}
	}
	if len(ch.published) != n {
		t.Errorf("published %d messages, want %d", len(ch.published), n)
	}
}
