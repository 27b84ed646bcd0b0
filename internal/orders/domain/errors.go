package domain

import (
	"fmt"

	"storefront/pkg/errors"
)

// Stable reasons returned to clients
const (
	ReasonProductNotFound     = "PRODUCT_NOT_FOUND"
	ReasonProductNotAvailable = "PRODUCT_NOT_AVAILABLE"
	ReasonInsufficientStock   = "INSUFFICIENT_STOCK"
	ReasonOrderNotFound       = "ORDER_NOT_FOUND"
	ReasonAlreadyCancelled    = "ORDER_ALREADY_CANCELLED"
	ReasonNotCancellable      = "CANNOT_CANCEL_SHIPPED_ORDER"
	ReasonAdminRequired       = "ADMIN_REQUIRED"
	ReasonAuthRequired        = "AUTH_REQUIRED"
)

// Domain-specific errors
var (
	ErrCustomerRequired     = errors.NewValidation("customer is required", nil)
	ErrItemsRequired        = errors.NewValidation("order must have at least one item", nil)
	ErrInvalidQuantity      = errors.NewValidation("quantity must be at least 1", nil)
	ErrInvalidPaymentMethod = errors.NewValidation("invalid payment method", nil)
	ErrInvalidStatus        = errors.NewValidation("invalid status", nil)

	ErrAlreadyCancelled = errors.NewConflict("order is already cancelled").WithReason(ReasonAlreadyCancelled)
	ErrNotCancellable   = errors.NewConflict("cannot cancel order that has been shipped").WithReason(ReasonNotCancellable)
	ErrAdminRequired    = errors.NewForbidden("admin access required").WithReason(ReasonAdminRequired)
	ErrAuthRequired     = errors.NewUnauthorized("authentication required").WithReason(ReasonAuthRequired)
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id uint) error {
	return errors.NewNotFound("order", id).WithReason(ReasonOrderNotFound)
}

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id uint) error {
	return errors.NewNotFound("product", id).WithReason(ReasonProductNotFound)
}

// NewProductNotAvailable reports a product that is not active
func NewProductNotAvailable(p *Product) error {
	return errors.NewConflict(fmt.Sprintf("product %s is not available", p.Name)).
		WithReason(ReasonProductNotAvailable)
}

// NewInsufficientStock reports a quantity the product cannot cover
func NewInsufficientStock(productID uint, name string, requested, available int) error {
	e := errors.NewConflict(fmt.Sprintf("insufficient stock for product %s", name)).
		WithReason(ReasonInsufficientStock)
	e.Details = map[string]interface{}{
		"product_id": productID,
		"requested":  requested,
		"available":  available,
	}
	return e
}
