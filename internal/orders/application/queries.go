package application

import (
	"context"
	"strings"

	"storefront/internal/orders/domain"
	"storefront/internal/orders/ports"
	"storefront/pkg/auth"
	"storefront/pkg/errors"
)

const (
	defaultCustomerPageSize = 10
	defaultAdminPageSize    = 20
	maxPageSize             = 100
)

// Pagination describes a page of results
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

// GetOrderInput represents the input for getting an order
type GetOrderInput struct {
	ID uint
}

// GetOrderOutput represents the output of getting an order
type GetOrderOutput struct {
	Order *domain.Order
}

// GetOrder retrieves one of the principal's own orders
func (uc *OrderUseCase) GetOrder(ctx context.Context, principal auth.Principal, input GetOrderInput) (*GetOrderOutput, error) {
	if principal.ID == 0 {
		return nil, domain.ErrAuthRequired
	}

	order, err := uc.repo.GetForCustomer(ctx, input.ID, principal.ID)
	if err != nil {
		return nil, errors.OrInternal(err, "failed to get order")
	}

	return &GetOrderOutput{Order: order}, nil
}

// AdminGetOrder retrieves any order
func (uc *OrderUseCase) AdminGetOrder(ctx context.Context, principal auth.Principal, input GetOrderInput) (*GetOrderOutput, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAdminRequired
	}

	order, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, errors.OrInternal(err, "failed to get order")
	}

	return &GetOrderOutput{Order: order}, nil
}

// ListOrdersInput represents the input for listing the principal's orders
type ListOrdersInput struct {
	Page   int
	Limit  int
	Status string
}

// ListOrdersOutput represents a page of orders
type ListOrdersOutput struct {
	Orders     []*domain.Order
	Pagination Pagination
}

// ListOrders lists the principal's own orders, newest first
func (uc *OrderUseCase) ListOrders(ctx context.Context, principal auth.Principal, input ListOrdersInput) (*ListOrdersOutput, error) {
	if principal.ID == 0 {
		return nil, domain.ErrAuthRequired
	}

	status := domain.OrderStatus(strings.TrimSpace(input.Status))
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	page, limit := normalizePage(input.Page, input.Limit, defaultCustomerPageSize)
	return uc.list(ctx, page, limit, ports.OrderFilter{
		CustomerID: principal.ID,
		Status:     status,
	})
}

// AdminListOrdersInput represents the input for the admin order listing
type AdminListOrdersInput struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	Search        string
}

// AdminListOrders lists every order, optionally filtered by status, payment
// status and a case-insensitive search over order number and shipping name
func (uc *OrderUseCase) AdminListOrders(ctx context.Context, principal auth.Principal, input AdminListOrdersInput) (*ListOrdersOutput, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAdminRequired
	}

	status := domain.OrderStatus(strings.TrimSpace(input.Status))
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	paymentStatus := domain.PaymentStatus(strings.TrimSpace(input.PaymentStatus))
	if paymentStatus != "" && !paymentStatus.Valid() {
		return nil, errors.NewValidation("invalid payment status", nil)
	}

	page, limit := normalizePage(input.Page, input.Limit, defaultAdminPageSize)
	return uc.list(ctx, page, limit, ports.OrderFilter{
		Status:        status,
		PaymentStatus: paymentStatus,
		Search:        strings.TrimSpace(input.Search),
	})
}

func (uc *OrderUseCase) list(ctx context.Context, page, limit int, filter ports.OrderFilter) (*ListOrdersOutput, error) {
	filter.Offset = (page - 1) * limit
	filter.Limit = limit

	orders, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.OrInternal(err, "failed to list orders")
	}

	return &ListOrdersOutput{
		Orders:     orders,
		Pagination: newPagination(page, limit, total),
	}, nil
}
