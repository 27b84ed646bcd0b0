package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/orders/domain"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create persists a new order with its items and timeline, assigning IDs
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uint) (*domain.Order, error)

	// GetForUpdate retrieves an order by ID, locking it for update when
	// called inside a transaction
	GetForUpdate(ctx context.Context, id uint) (*domain.Order, error)

	// GetForCustomer retrieves an order owned by the customer, locking it
	// for update when called inside a transaction
	GetForCustomer(ctx context.Context, id, customerID uint) (*domain.Order, error)

	// SaveStatus writes the status fields and appends unsaved timeline entries.
	// Existing timeline entries are never rewritten.
	SaveStatus(ctx context.Context, order *domain.Order) error

	// List retrieves a page of orders matching the filter, newest first
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int64, error)
}

// OrderFilter narrows order listings
type OrderFilter struct {
	CustomerID    uint
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Search        string
	Offset        int
	Limit         int
}

// ProductCatalog is the external authority on product price, stock and status
type ProductCatalog interface {
	// FindByID returns the product or a PRODUCT_NOT_FOUND error
	FindByID(ctx context.Context, id uint) (*domain.Product, error)

	// AdjustStock atomically adds delta to the stock. A negative delta only
	// applies when enough stock remains, otherwise INSUFFICIENT_STOCK.
	AdjustStock(ctx context.Context, id uint, delta int) (*domain.Product, error)
}

// Transactor runs fn in a single storage transaction. Repositories called with
// the context passed to fn take part in that transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderNumberGenerator allocates human-readable order numbers from a per-year
// sequence. The year is the order's creation year.
type OrderNumberGenerator interface {
	NextOrderNumber(ctx context.Context, year int) (string, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishOrderCancelled publishes an order cancelled event
	PublishOrderCancelled(ctx context.Context, order *domain.Order, reason string) error

	// PublishOrderStatusChanged publishes an admin status change
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error
}

// Metrics records order business metrics
type Metrics interface {
	OrderCreated(total decimal.Decimal)
	OrderCancelled()
	OrderStatusChanged(from, to domain.OrderStatus)
	OrderRejected(reason string)
}
