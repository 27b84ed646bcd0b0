package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/orders/domain"
	"storefront/pkg/db"
	apperrors "storefront/pkg/errors"
)

// ProductModel is the GORM model for catalog products
type ProductModel struct {
	ID        uint                 `gorm:"primaryKey"`
	Name      string               `gorm:"size:255;not null"`
	Price     decimal.Decimal      `gorm:"type:numeric(16,2);not null"`
	Stock     int                  `gorm:"not null;default:0;check:stock >= 0"`
	Status    domain.ProductStatus `gorm:"size:20;not null;default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// PostgresProductCatalog implements ProductCatalog over the products table
type PostgresProductCatalog struct {
	db *gorm.DB
}

// NewPostgresProductCatalog creates a new PostgreSQL product catalog
func NewPostgresProductCatalog(db *gorm.DB) *PostgresProductCatalog {
	return &PostgresProductCatalog{db: db}
}

// Migrate runs auto-migration for the product model
func (c *PostgresProductCatalog) Migrate() error {
	return c.db.AutoMigrate(&ProductModel{})
}

// FindByID returns the product
func (c *PostgresProductCatalog) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var model ProductModel

	result := db.Conn(ctx, c.db).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get product", result.Error)
	}

	return productToDomain(&model), nil
}

// AdjustStock adds delta to the stock with a single conditional UPDATE, so
// concurrent decrements can never drive stock below zero
func (c *PostgresProductCatalog) AdjustStock(ctx context.Context, id uint, delta int) (*domain.Product, error) {
	conn := db.Conn(ctx, c.db)

	result := conn.Model(&ProductModel{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to update stock", result.Error)
	}

	var model ProductModel
	if err := conn.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get product", err)
	}

	if result.RowsAffected == 0 {
		return nil, domain.NewInsufficientStock(model.ID, model.Name, -delta, model.Stock)
	}

	return productToDomain(&model), nil
}

func productToDomain(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:     model.ID,
		Name:   model.Name,
		Price:  model.Price,
		Stock:  model.Stock,
		Status: model.Status,
	}
}
