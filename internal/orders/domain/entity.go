package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	noteOrderCreated     = "Order created"
	noteCancelledDefault = "Order cancelled by customer"
)

// Address is a postal and contact address
type Address struct {
	FirstName string
	LastName  string
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	Phone     string
}

// OrderItem is one priced line of an order. UnitPrice and ProductName are
// snapshots taken at creation.
type OrderItem struct {
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// NewOrderItem prices a line from the product snapshot
func NewOrderItem(product *Product, quantity int) OrderItem {
	return OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		LineTotal:   LineTotal(product.Price, quantity),
	}
}

// Order represents the order aggregate
type Order struct {
	ID              uint
	OrderNumber     string
	CustomerID      uint
	Items           []OrderItem
	Pricing         Pricing
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	ShippingAddress Address
	BillingAddress  Address
	CustomerNote    string
	Status          OrderStatus
	Timeline        Timeline
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
}

// NewOrderParams carries everything needed to open an order
type NewOrderParams struct {
	CustomerID      uint
	Items           []OrderItem
	PaymentMethod   PaymentMethod
	ShippingAddress Address
	BillingAddress  *Address
	Note            string
	Now             time.Time
}

// NewOrder creates a pending order with its initial timeline entry
func NewOrder(p NewOrderParams) (*Order, error) {
	if p.CustomerID == 0 {
		return nil, ErrCustomerRequired
	}
	if len(p.Items) == 0 {
		return nil, ErrItemsRequired
	}
	for _, item := range p.Items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}
	if !p.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	billing := p.ShippingAddress
	if p.BillingAddress != nil {
		billing = *p.BillingAddress
	}

	items := make([]OrderItem, len(p.Items))
	copy(items, p.Items)

	order := &Order{
		CustomerID:      p.CustomerID,
		Items:           items,
		Pricing:         CalculatePricing(items),
		PaymentMethod:   p.PaymentMethod,
		PaymentStatus:   PaymentStatusPending,
		ShippingAddress: p.ShippingAddress,
		BillingAddress:  billing,
		CustomerNote:    p.Note,
		Status:          OrderStatusPending,
		CreatedAt:       p.Now,
		UpdatedAt:       p.Now,
	}
	order.record(OrderStatusPending, noteOrderCreated, p.CustomerID, p.Now)

	return order, nil
}

// Cancel applies a customer cancellation
func (o *Order) Cancel(actorID uint, reason string, now time.Time) error {
	if o.Status == OrderStatusCancelled {
		return ErrAlreadyCancelled
	}
	if !o.Status.CustomerCancellable() {
		return ErrNotCancellable
	}
	if reason == "" {
		reason = noteCancelledDefault
	}

	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.record(OrderStatusCancelled, reason, actorID, now)
	return nil
}

// SetStatus applies an admin status override. Any status may follow any other.
func (o *Order) SetStatus(status OrderStatus, actorID uint, note string, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if note == "" {
		note = "Status updated to " + string(status)
	}

	o.Status = status
	switch status {
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	case OrderStatusCancelled:
		if o.CancelledAt == nil {
			o.CancelledAt = &now
		}
	}
	o.record(status, note, actorID, now)
	return nil
}

func (o *Order) record(status OrderStatus, note string, actorID uint, now time.Time) {
	o.Timeline.Append(TimelineEntry{
		Status:    status,
		Note:      note,
		ActorID:   actorID,
		CreatedAt: now,
	})
	o.UpdatedAt = now
}

// ItemCount returns the total number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ProductStatus is the catalog availability status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusOutOfStock   ProductStatus = "out_of_stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product is the catalog's view of a product as consumed by ordering
type Product struct {
	ID     uint
	Name   string
	Price  decimal.Decimal
	Stock  int
	Status ProductStatus
}

// Available reports whether the product can be ordered at all
func (p *Product) Available() bool {
	return p.Status == ProductStatusActive
}
