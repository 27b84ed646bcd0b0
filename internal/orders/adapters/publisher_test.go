package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/orders/domain"
	"storefront/pkg/events"
	"storefront/pkg/logger"
)

type recordedMessage struct {
	key     string
	message interface{}
}

type fakeBroker struct {
	published []recordedMessage
}

func (f *fakeBroker) Publish(ctx context.Context, routingKey string, message interface{}) error {
	f.published = append(f.published, recordedMessage{key: routingKey, message: message})
	return nil
}

func sampleOrder(t *testing.T) *domain.Order {
	t.Helper()
	p := &domain.Product{ID: 3, Name: "Áo", Price: decimal.NewFromInt(250_000), Stock: 9, Status: domain.ProductStatusActive}
	o, err := domain.NewOrder(domain.NewOrderParams{
		CustomerID:    11,
		Items:         []domain.OrderItem{domain.NewOrderItem(p, 2)},
		PaymentMethod: domain.PaymentMethodMomo,
		Now:           time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	o.ID = 21
	o.OrderNumber = "ORD-2024-000021"
	return o
}

func TestBrokerPublisher(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewBrokerPublisher(broker)
	ctx := logger.WithTraceIDContext(context.Background(), "trace-9")
	order := sampleOrder(t)

	require.NoError(t, pub.PublishOrderCreated(ctx, order))

	require.NoError(t, order.Cancel(11, "", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, pub.PublishOrderCancelled(ctx, order, "Order cancelled by customer"))

	require.NoError(t, order.SetStatus(domain.OrderStatusRefunded, 1, "", time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, pub.PublishOrderStatusChanged(ctx, order, domain.OrderStatusCancelled))

	require.Len(t, broker.published, 3)

	created := broker.published[0].message.(*events.OrderCreatedEvent)
	assert.Equal(t, events.RoutingKeyOrderCreated, broker.published[0].key)
	assert.Equal(t, "trace-9", created.TraceID)
	assert.Equal(t, "ORD-2024-000021", created.Payload.OrderNumber)
	assert.Equal(t, "600000.00", created.Payload.Total)
	assert.Equal(t, 2, created.Payload.ItemCount)
	assert.Equal(t, "250000.00", created.Payload.Items[0].UnitPrice)

	cancelled := broker.published[1].message.(*events.OrderCancelledEvent)
	assert.Equal(t, events.RoutingKeyOrderCancelled, cancelled.EventType)
	assert.Equal(t, 2, cancelled.Payload.Restocked[0].Quantity)
	assert.False(t, cancelled.Payload.CancelledAt.IsZero())

	changed := broker.published[2].message.(*events.OrderStatusChangedEvent)
	assert.Equal(t, "cancelled", changed.Payload.From)
	assert.Equal(t, "refunded", changed.Payload.To)
	assert.Equal(t, "Status updated to refunded", changed.Payload.Note)
	assert.Equal(t, uint(1), changed.Payload.ChangedBy)
}
