package adapters

import (
	"context"

	"storefront/internal/orders/domain"
	"storefront/pkg/events"
	"storefront/pkg/logger"
)

// BrokerPublisher implements EventPublisher on top of any events.Publisher,
// RabbitMQ or Kafka
type BrokerPublisher struct {
	publisher events.Publisher
}

// NewBrokerPublisher creates a new broker-backed event publisher
func NewBrokerPublisher(publisher events.Publisher) *BrokerPublisher {
	return &BrokerPublisher{publisher: publisher}
}

// PublishOrderCreated publishes an order created event
func (p *BrokerPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	event := events.NewOrderCreatedEvent(events.OrderCreatedPayload{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Items:       orderLines(order.Items),
		ItemCount:   order.ItemCount(),
		Total:       order.Pricing.Total.StringFixed(2),
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCreated, event)
}

// PublishOrderCancelled publishes an order cancelled event
func (p *BrokerPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order, reason string) error {
	payload := events.OrderCancelledPayload{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Reason:      reason,
		Restocked:   orderLines(order.Items),
	}
	if order.CancelledAt != nil {
		payload.CancelledAt = *order.CancelledAt
	}

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCancelled,
		events.NewOrderCancelledEvent(payload, logger.GetTraceID(ctx)))
}

// PublishOrderStatusChanged publishes an admin status change
func (p *BrokerPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error {
	last, _ := order.Timeline.Last()

	event := events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		From:        string(previous),
		To:          string(order.Status),
		Note:        last.Note,
		ChangedBy:   last.ActorID,
		ChangedAt:   last.CreatedAt,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyOrderStatusChanged, event)
}

func orderLines(items []domain.OrderItem) []events.OrderLine {
	lines := make([]events.OrderLine, len(items))
	for i, item := range items {
		lines[i] = events.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		}
	}
	return lines
}
