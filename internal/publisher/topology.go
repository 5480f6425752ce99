package publisher

import (
	"github.com/streadway/amqp"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

// Topology names the durable routing entities the gateway declares at
// startup. Declaration is idempotent: a no-op when the entities already exist
// with matching properties.
type Topology struct {
	Exchange    string
	EmailQueue  string
	PushQueue   string
	FailedQueue string
}

// wireChannel is the slice of *amqp.Channel the declarations need; narrowed
// so topology setup is testable without a live broker.
type wireChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
}

// declareTopology declares the direct exchange, one durable queue per
// channel bound by its routing key, and the unbound failed queue (populated
// by downstream dead-lettering policy, not by the gateway).
func declareTopology(ch wireChannel, t Topology) error {
	if err := ch.ExchangeDeclare(
		t.Exchange,
		"direct",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		return err
	}

	emailKey, _ := models.TypeEmail.RoutingKey()
	pushKey, _ := models.TypePush.RoutingKey()

	bindings := []struct {
		queue string
		key   string
	}{
		{t.EmailQueue, emailKey},
		{t.PushQueue, pushKey},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(b.queue, b.key, t.Exchange, false, nil); err != nil {
			return err
		}
	}

	if _, err := ch.QueueDeclare(t.FailedQueue, true, false, false, false, nil); err != nil {
		return err
	}

	// Fairness setting carried for symmetry with the consumers; the gateway
	// itself only publishes.
	return ch.Qos(0, 0, true)
}
