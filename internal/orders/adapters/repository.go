package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/orders/domain"
	"storefront/internal/orders/ports"
	"storefront/pkg/db"
	apperrors "storefront/pkg/errors"
)

// AddressModel is embedded for shipping and billing addresses
type AddressModel struct {
	FirstName string `gorm:"size:100"`
	LastName  string `gorm:"size:100"`
	Street    string `gorm:"size:255"`
	City      string `gorm:"size:100"`
	State     string `gorm:"size:100"`
	ZipCode   string `gorm:"size:20"`
	Country   string `gorm:"size:100"`
	Phone     string `gorm:"size:20"`
}

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID              uint                 `gorm:"primaryKey"`
	OrderNumber     string               `gorm:"size:32;uniqueIndex;not null"`
	CustomerID      uint                 `gorm:"index;not null"`
	Subtotal        decimal.Decimal      `gorm:"type:numeric(16,2);not null"`
	Tax             decimal.Decimal      `gorm:"type:numeric(16,2);not null"`
	Shipping        decimal.Decimal      `gorm:"type:numeric(16,2);not null"`
	Discount        decimal.Decimal      `gorm:"type:numeric(16,2);not null"`
	Total           decimal.Decimal      `gorm:"type:numeric(16,2);not null"`
	PaymentMethod   domain.PaymentMethod `gorm:"size:20;not null"`
	PaymentStatus   domain.PaymentStatus `gorm:"size:20;not null;default:'pending';index"`
	ShippingAddress AddressModel         `gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  AddressModel         `gorm:"embedded;embeddedPrefix:billing_"`
	CustomerNote    string               `gorm:"type:text"`
	Status          domain.OrderStatus   `gorm:"size:20;not null;default:'pending';index"`
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
	Items           []OrderItemModel          `gorm:"foreignKey:OrderID"`
	Timeline        []OrderTimelineEntryModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the GORM model for order lines
type OrderItemModel struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"index;not null"`
	Position    int             `gorm:"not null"`
	ProductID   uint            `gorm:"index;not null"`
	ProductName string          `gorm:"size:255"`
	Quantity    int             `gorm:"not null;check:quantity >= 1"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(16,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderTimelineEntryModel is the GORM model for timeline rows. Rows are only
// ever inserted.
type OrderTimelineEntryModel struct {
	ID        uint               `gorm:"primaryKey"`
	OrderID   uint               `gorm:"index;not null"`
	Status    domain.OrderStatus `gorm:"size:20;not null"`
	Note      string             `gorm:"type:text"`
	ActorID   uint               `gorm:"not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderTimelineEntryModel) TableName() string {
	return "order_timeline"
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order models
func (r *PostgresOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderItemModel{}, &OrderTimelineEntryModel{})
}

// Create persists the order with its items and initial timeline
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := toModel(order)

	if err := db.Conn(ctx, r.db).Create(model).Error; err != nil {
		return err
	}

	// Update domain entity with generated IDs
	order.ID = model.ID
	order.Timeline = toTimeline(model.Timeline)
	return nil
}

// GetByID retrieves an order by ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	return r.find(db.Conn(ctx, r.db).Where("id = ?", id), id)
}

// GetForUpdate retrieves an order by ID, locking the row
func (r *PostgresOrderRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Order, error) {
	q := db.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id)
	return r.find(q, id)
}

// GetForCustomer retrieves an order owned by customerID, locking the row
func (r *PostgresOrderRepository) GetForCustomer(ctx context.Context, id, customerID uint) (*domain.Order, error) {
	q := db.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND customer_id = ?", id, customerID)
	return r.find(q, id)
}

func (r *PostgresOrderRepository) find(q *gorm.DB, id uint) (*domain.Order, error) {
	var model OrderModel

	result := preload(q).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model), nil
}

// SaveStatus updates the status columns and inserts unsaved timeline rows
func (r *PostgresOrderRepository) SaveStatus(ctx context.Context, order *domain.Order) error {
	conn := db.Conn(ctx, r.db)

	result := conn.Model(&OrderModel{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"delivered_at":   order.DeliveredAt,
		"cancelled_at":   order.CancelledAt,
		"updated_at":     order.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(order.ID)
	}

	unsaved := order.Timeline.Unsaved()
	if len(unsaved) == 0 {
		return nil
	}
	rows := make([]OrderTimelineEntryModel, len(unsaved))
	for i, e := range unsaved {
		rows[i] = toTimelineModel(order.ID, e)
	}
	if err := conn.Create(&rows).Error; err != nil {
		return apperrors.NewInternal("failed to append timeline", err)
	}

	var stored []OrderTimelineEntryModel
	if err := conn.Where("order_id = ?", order.ID).Order("id ASC").Find(&stored).Error; err != nil {
		return apperrors.NewInternal("failed to reload timeline", err)
	}
	order.Timeline = toTimeline(stored)
	return nil
}

// List retrieves a page of orders matching the filter
func (r *PostgresOrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, int64, error) {
	q := db.Conn(ctx, r.db).Model(&OrderModel{})
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(order_number ILIKE ? OR shipping_first_name ILIKE ? OR shipping_last_name ILIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInternal("failed to count orders", err)
	}

	var models []OrderModel
	result := preload(q).
		Order("created_at DESC, id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, apperrors.NewInternal("failed to list orders", result.Error)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toDomain(&models[i])
	}

	return orders, total, nil
}

func preload(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

// toModel converts a domain entity to a GORM model
func toModel(order *domain.Order) *OrderModel {
	items := make([]OrderItemModel, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemModel{
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}

	entries := order.Timeline.Entries()
	timeline := make([]OrderTimelineEntryModel, len(entries))
	for i, e := range entries {
		timeline[i] = toTimelineModel(order.ID, e)
	}

	return &OrderModel{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		Subtotal:        order.Pricing.Subtotal,
		Tax:             order.Pricing.Tax,
		Shipping:        order.Pricing.Shipping,
		Discount:        order.Pricing.Discount,
		Total:           order.Pricing.Total,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		ShippingAddress: AddressModel(order.ShippingAddress),
		BillingAddress:  AddressModel(order.BillingAddress),
		CustomerNote:    order.CustomerNote,
		Status:          order.Status,
		DeliveredAt:     order.DeliveredAt,
		CancelledAt:     order.CancelledAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Items:           items,
		Timeline:        timeline,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *OrderModel) *domain.Order {
	items := make([]domain.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}

	return &domain.Order{
		ID:          model.ID,
		OrderNumber: model.OrderNumber,
		CustomerID:  model.CustomerID,
		Items:       items,
		Pricing: domain.Pricing{
			Subtotal: model.Subtotal,
			Tax:      model.Tax,
			Shipping: model.Shipping,
			Discount: model.Discount,
			Total:    model.Total,
		},
		PaymentMethod:   model.PaymentMethod,
		PaymentStatus:   model.PaymentStatus,
		ShippingAddress: domain.Address(model.ShippingAddress),
		BillingAddress:  domain.Address(model.BillingAddress),
		CustomerNote:    model.CustomerNote,
		Status:          model.Status,
		Timeline:        toTimeline(model.Timeline),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		DeliveredAt:     model.DeliveredAt,
		CancelledAt:     model.CancelledAt,
	}
}

func toTimelineModel(orderID uint, e domain.TimelineEntry) OrderTimelineEntryModel {
	return OrderTimelineEntryModel{
		ID:        e.ID,
		OrderID:   orderID,
		Status:    e.Status,
		Note:      e.Note,
		ActorID:   e.ActorID,
		CreatedAt: e.CreatedAt,
	}
}

func toTimeline(rows []OrderTimelineEntryModel) domain.Timeline {
	entries := make([]domain.TimelineEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.TimelineEntry{
			ID:        row.ID,
			Status:    row.Status,
			Note:      row.Note,
			ActorID:   row.ActorID,
			CreatedAt: row.CreatedAt,
		}
	}
	return domain.NewTimeline(entries)
}
