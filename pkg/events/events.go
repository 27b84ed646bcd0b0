package events

import (
	"context"
	"time"
)

// Exchange and topic names
const (
	ExchangeOrders = "orders.events"
	TopicOrders    = "orders.events"
)

// Routing keys
const (
	RoutingKeyOrderCreated       = "order.created"
	RoutingKeyOrderCancelled     = "order.cancelled"
	RoutingKeyOrderStatusChanged = "order.status_changed"
)

const version = "1.0"

// Publisher delivers an encoded event under a routing key. Both the RabbitMQ
// and Kafka publishers satisfy it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// Envelope wraps every event payload
type Envelope[T any] struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id"`
	Payload   T         `json:"payload"`
}

func newEnvelope[T any](eventType, traceID string, payload T) *Envelope[T] {
	return &Envelope[T]{
		Version:   version,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// OrderLine is one line of an order in event payloads
type OrderLine struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderCreatedPayload contains order data
type OrderCreatedPayload struct {
	ID          uint        `json:"id"`
	OrderNumber string      `json:"order_number"`
	CustomerID  uint        `json:"customer_id"`
	Items       []OrderLine `json:"items"`
	ItemCount   int         `json:"item_count"`
	Total       string      `json:"total"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderCreatedEvent is published when an order is created
type OrderCreatedEvent = Envelope[OrderCreatedPayload]

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(payload OrderCreatedPayload, traceID string) *OrderCreatedEvent {
	return newEnvelope(RoutingKeyOrderCreated, traceID, payload)
}

// OrderCancelledPayload contains cancellation data
type OrderCancelledPayload struct {
	ID          uint        `json:"id"`
	OrderNumber string      `json:"order_number"`
	CustomerID  uint        `json:"customer_id"`
	Reason      string      `json:"reason"`
	Restocked   []OrderLine `json:"restocked"`
	CancelledAt time.Time   `json:"cancelled_at"`
}

// OrderCancelledEvent is published when a customer cancels an order
type OrderCancelledEvent = Envelope[OrderCancelledPayload]

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(payload OrderCancelledPayload, traceID string) *OrderCancelledEvent {
	return newEnvelope(RoutingKeyOrderCancelled, traceID, payload)
}

// OrderStatusChangedPayload contains the before and after status
type OrderStatusChangedPayload struct {
	ID          uint      `json:"id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uint      `json:"customer_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Note        string    `json:"note"`
	ChangedBy   uint      `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
}

// OrderStatusChangedEvent is published when an admin changes an order status
type OrderStatusChangedEvent = Envelope[OrderStatusChangedPayload]

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(payload OrderStatusChangedPayload, traceID string) *OrderStatusChangedEvent {
	return newEnvelope(RoutingKeyOrderStatusChanged, traceID, payload)
}
