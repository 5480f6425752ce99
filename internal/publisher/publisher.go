package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

// publishChannel is the slice of *amqp.Channel the publish loop needs.
type publishChannel interface {
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	NotifyReturn(ret chan amqp.Return) chan amqp.Return
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type publishJob struct {
	routingKey    string
	body          []byte
	correlationID string
	messageID     string
	done          chan error
}

// Publisher serializes all exchange publishes through a single goroutine
// that owns the AMQP channel. streadway/amqp does not document channel
// publishing as safe for concurrent use, so callers enqueue jobs and wait
// for the confirm instead of sharing the handle.
type Publisher struct {
	exchange string
	logger   *slog.Logger
	jobs     chan publishJob
	stopped  chan struct{}
}

func NewPublisher(exchange string, logger *slog.Logger) *Publisher {
	return &Publisher{
		exchange: exchange,
		logger:   logger,
		jobs:     make(chan publishJob),
		stopped:  make(chan struct{}),
	}
}

// Publish encodes msg and hands it to the writer goroutine, waiting for the
// broker confirm. Once the job is enqueued the publish runs to completion;
// callers do not cancel in-flight dispatches.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg *models.PublishedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrSerialization, err)
	}

	job := publishJob{
		routingKey:    routingKey,
		body:          body,
		correlationID: msg.CorrelationID,
		messageID:     uuid.NewString(),
		done:          make(chan error, 1),
	}

	select {
	case p.jobs <- job:
	case <-p.stopped:
		return fmt.Errorf("publisher stopped: %w", apperr.ErrBrokerUnreachable)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", apperr.ErrBrokerUnreachable, ctx.Err())
	}

	select {
	case err := <-job.done:
		return err
	case <-p.stopped:
		return fmt.Errorf("publisher stopped: %w", apperr.ErrBrokerUnreachable)
	}
}

// Run owns ch for the life of ctx, processing one publish at a time in
// confirm mode. One job in flight means confirms and mandatory returns
// correlate trivially with the current job.
func (p *Publisher) Run(ctx context.Context, ch publishChannel) error {
	defer close(p.stopped)

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	returns := ch.NotifyReturn(make(chan amqp.Return, 4))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-p.jobs:
			job.done <- p.publishOne(ctx, ch, confirms, returns, job)
		}
	}
}

func (p *Publisher) publishOne(
	ctx context.Context,
	ch publishChannel,
	confirms chan amqp.Confirmation,
	returns chan amqp.Return,
	job publishJob,
) error {
	err := ch.Publish(p.exchange, job.routingKey, true /* mandatory */, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: job.correlationID,
		MessageId:     job.messageID,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		Body:          job.body,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrBrokerUnreachable, err)
	}

	select {
	case confirmation, ok := <-confirms:
		if !ok {
			return fmt.Errorf("confirm channel closed: %w", apperr.ErrBrokerUnreachable)
		}
		if !confirmation.Ack {
			return fmt.Errorf("broker nacked delivery %d: %w", confirmation.DeliveryTag, apperr.ErrPublishRejected)
		}
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", apperr.ErrBrokerUnreachable, ctx.Err())
	}

	// The broker sends basic.return before the ack for an unroutable
	// mandatory message, so a matching return is already buffered here.
	select {
	case ret := <-returns:
		if ret.MessageId == job.messageID {
			p.logger.Error("message unroutable",
				slog.String("routing_key", job.routingKey),
				slog.String("reply", ret.ReplyText))
			return fmt.Errorf("unroutable (%s): %w", ret.ReplyText, apperr.ErrPublishRejected)
		}
		p.logger.Warn("stale broker return discarded", slog.String("message_id", ret.MessageId))
	default:
	}

	return nil
}
