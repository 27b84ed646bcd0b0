package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storefront/pkg/logger"
)

// ErrNotConnected is returned while the connection is being re-established
var ErrNotConnected = errors.New("rabbitmq: not connected")

// Connection manages a RabbitMQ connection and re-dials when the broker drops it
type Connection struct {
	url        string
	conn       *amqp.Connection
	channel    *amqp.Channel
	log        *logger.Logger
	mu         sync.RWMutex
	closeChan  chan struct{}
	reconnects int
	backoff    time.Duration
}

// NewConnection creates a new RabbitMQ connection
func NewConnection(url string, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		url:       url,
		log:       log,
		closeChan: make(chan struct{}),
		backoff:   2 * time.Second,
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	go c.watch()

	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	c.log.Info("connected to RabbitMQ", zap.Int("reconnects", c.reconnects))
	return nil
}

// watch re-dials after an unexpected close until Close is called
func (c *Connection) watch() {
	for {
		c.mu.RLock()
		notify := c.conn.NotifyClose(make(chan *amqp.Error, 1))
		c.mu.RUnlock()

		select {
		case <-c.closeChan:
			return
		case amqpErr, ok := <-notify:
			if !ok || amqpErr == nil {
				return
			}
			c.log.Warn("RabbitMQ connection lost", zap.String("reason", amqpErr.Reason))
		}

		c.mu.Lock()
		c.channel = nil
		c.mu.Unlock()

		for {
			select {
			case <-c.closeChan:
				return
			case <-time.After(c.backoff):
			}
			c.reconnects++
			if err := c.connect(); err != nil {
				c.log.Error("RabbitMQ reconnect failed", zap.Error(err))
				continue
			}
			break
		}
	}
}

// Channel returns the current channel, nil while reconnecting
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the connection
func (c *Connection) Close() error {
	close(c.closeChan)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publisher publishes JSON messages to a topic exchange
type Publisher struct {
	conn     *Connection
	exchange string
	log      *logger.Logger
}

// NewPublisher declares the exchange and creates a publisher for it
func NewPublisher(conn *Connection, exchange string, log *logger.Logger) (*Publisher, error) {
	err := conn.Channel().ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish publishes a message
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ch := p.conn.Channel()
	if ch == nil {
		return ErrNotConnected
	}

	traceID := logger.GetTraceID(ctx)

	err = ch.PublishWithContext(
		ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
			CorrelationId: traceID,
			Headers: amqp.Table{
				"x-trace-id": traceID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
	)

	return nil
}
