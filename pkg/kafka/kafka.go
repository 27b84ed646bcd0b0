package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"storefront/pkg/logger"
)

// ParseBrokers splits a comma separated broker list, dropping blanks
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Publisher writes JSON messages to a single topic. The routing key becomes
// the message key and a header, so consumers can filter by event type.
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewPublisher creates a publisher for topic on brokers
func NewPublisher(brokers []string, topic string, log *logger.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		log: log,
	}, nil
}

// Publish publishes a message
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	traceID := logger.GetTraceID(ctx)

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(routingKey),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "x-trace-id", Value: []byte(traceID)},
			{Key: "x-event-type", Value: []byte(routingKey)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("topic", p.writer.Topic),
		zap.String("routing_key", routingKey),
	)

	return nil
}

// Close flushes pending writes
func (p *Publisher) Close() error {
	return p.writer.Close()
}
