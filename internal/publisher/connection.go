package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/streadway/amqp"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/pkg/retry"
)

// State is the bootstrap lifecycle. Ready is the only state from which the
// HTTP boundary routes traffic, and it is never left once entered: a broker
// disconnect at runtime surfaces through publish failures, not through the
// readiness flag.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateDeclaring
	StateReady
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateDeclaring:
		return "declaring"
	case StateReady:
		return "ready"
	}
	return "disconnected"
}

// Connector establishes the broker connection with bounded exponential
// backoff and declares the durable topology. Runs once at process start.
type Connector struct {
	url            string
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger

	dial  func(url string) (*amqp.Connection, error)
	state atomic.Int32
	ready atomic.Bool
}

func NewConnector(url string, initialBackoff, maxBackoff time.Duration, logger *slog.Logger) *Connector {
	if initialBackoff <= 0 {
		initialBackoff = time.Second
	}
	if maxBackoff <= 0 {
		maxBackoff = 10 * time.Second
	}
	return &Connector{
		url:            url,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		logger:         logger,
		dial:           amqp.Dial,
	}
}

// Ready reports whether bootstrap completed. It transitions false→true
// exactly once.
func (c *Connector) Ready() bool {
	return c.ready.Load()
}

// State returns the current bootstrap state.
func (c *Connector) State() State {
	return State(c.state.Load())
}

// Bootstrap dials the broker, opens a channel and declares the topology.
// The context deadline bounds the whole sequence; exhausting it is a fatal
// startup condition for the caller, since serving without a working broker
// breaks every downstream invariant.
func (c *Connector) Bootstrap(ctx context.Context, top Topology) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := c.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		c.state.Store(int32(StateDisconnected))
		return nil, nil, fmt.Errorf("amqp channel open: %w", err)
	}

	if err := c.Declare(ch, top); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// Connect dials with exponential backoff until it succeeds or the context
// deadline passes.
func (c *Connector) Connect(ctx context.Context) (*amqp.Connection, error) {
	c.state.Store(int32(StateConnecting))

	var conn *amqp.Connection
	err := retry.Do(ctx, retry.Config{
		InitialBackoff: c.initialBackoff,
		MaxBackoff:     c.maxBackoff,
	}, func() error {
		var dialErr error
		conn, dialErr = c.dial(c.url)
		if dialErr != nil {
			c.logger.Warn("amqp connect failed, retrying", slog.Any("error", dialErr))
		}
		return dialErr
	})
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		return nil, fmt.Errorf("amqp connect gave up: %w", err)
	}
	return conn, nil
}

// Declare issues the topology declarations on ch and flips the readiness
// flag. Declaration failures are fatal at startup.
func (c *Connector) Declare(ch wireChannel, top Topology) error {
	c.state.Store(int32(StateDeclaring))
	if err := declareTopology(ch, top); err != nil {
		c.state.Store(int32(StateDisconnected))
		return fmt.Errorf("topology declaration: %w", err)
	}
	c.state.Store(int32(StateReady))
	c.ready.Store(true)
	c.logger.Info("broker topology declared", slog.String("exchange", top.Exchange))
	return nil
}
