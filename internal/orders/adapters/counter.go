package adapters

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/orders/domain"
	"storefront/pkg/db"
	apperrors "storefront/pkg/errors"
)

// OrderCounterModel keeps the last issued sequence per year
type OrderCounterModel struct {
	Year  int   `gorm:"primaryKey;autoIncrement:false"`
	Value int64 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderCounterModel) TableName() string {
	return "order_counters"
}

// PostgresOrderCounter implements OrderNumberGenerator with a per-year
// counter row
type PostgresOrderCounter struct {
	db *gorm.DB
}

// NewPostgresOrderCounter creates a new PostgreSQL order counter
func NewPostgresOrderCounter(db *gorm.DB) *PostgresOrderCounter {
	return &PostgresOrderCounter{db: db}
}

// Migrate runs auto-migration for the counter model
func (c *PostgresOrderCounter) Migrate() error {
	return c.db.AutoMigrate(&OrderCounterModel{})
}

// NextOrderNumber bumps the counter for year and formats it.
// The upsert holds the row lock until the surrounding transaction ends.
func (c *PostgresOrderCounter) NextOrderNumber(ctx context.Context, year int) (string, error) {
	var value int64
	err := db.Conn(ctx, c.db).Raw(
		`INSERT INTO order_counters (year, value) VALUES (?, 1)
		 ON CONFLICT (year) DO UPDATE SET value = order_counters.value + 1
		 RETURNING value`,
		year,
	).Scan(&value).Error
	if err != nil {
		return "", apperrors.NewInternal("failed to allocate order number", err)
	}

	return domain.OrderNumber(year, value), nil
}
