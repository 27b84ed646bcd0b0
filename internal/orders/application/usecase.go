package application

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/orders/domain"
	"storefront/internal/orders/ports"
	"storefront/pkg/auth"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// OrderUseCaseDeps bundles the collaborators of the order use case.
// Publisher and Metrics are optional.
type OrderUseCaseDeps struct {
	Orders     ports.OrderRepository
	Catalog    ports.ProductCatalog
	Transactor ports.Transactor
	Numbers    ports.OrderNumberGenerator
	Publisher  ports.EventPublisher
	Metrics    ports.Metrics
	Clock      func() time.Time
	Log        *logger.Logger
}

// OrderUseCase handles order business logic
type OrderUseCase struct {
	repo      ports.OrderRepository
	catalog   ports.ProductCatalog
	tx        ports.Transactor
	numbers   ports.OrderNumberGenerator
	publisher ports.EventPublisher
	metrics   ports.Metrics
	clock     func() time.Time
	validate  *validator.Validate
	log       *logger.Logger
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(deps OrderUseCaseDeps) *OrderUseCase {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &OrderUseCase{
		repo:      deps.Orders,
		catalog:   deps.Catalog,
		tx:        deps.Transactor,
		numbers:   deps.Numbers,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		clock: func() time.Time {
			return clock().UTC()
		},
		validate: newValidator(),
		log:      deps.Log,
	}
}

// OrderItemInput is one requested (product, quantity) pair
type OrderItemInput struct {
	ProductID uint `json:"product" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=1"`
}

// AddressInput is a postal and contact address supplied at checkout
type AddressInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country"`
	Phone     string `json:"phone" validate:"phone"`
}

// CreateOrderInput represents the input for creating an order
type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string           `json:"paymentMethod" validate:"required,oneof=cash bank_transfer credit_card paypal momo zalopay"`
	ShippingAddress AddressInput     `json:"shippingAddress"`
	BillingAddress  *AddressInput    `json:"billingAddress" validate:"omitempty"`
	Notes           string           `json:"notes" validate:"max=1000"`
}

// CreateOrderOutput represents the output of creating an order
type CreateOrderOutput struct {
	Order *domain.Order
}

// CreateOrder validates the cart against the catalog, prices it, persists the
// order and decrements stock. The first failing item aborts with no effects.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, principal auth.Principal, input CreateOrderInput) (*CreateOrderOutput, error) {
	if principal.ID == 0 {
		return nil, domain.ErrAuthRequired
	}
	if err := uc.validateStruct(input); err != nil {
		return nil, err
	}

	// Resolve and check each item in request order
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		product, err := uc.catalog.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, uc.reject(ctx, errors.OrInternal(err, "failed to load product"))
		}
		if !product.Available() {
			return nil, uc.reject(ctx, domain.NewProductNotAvailable(product))
		}
		if in.Quantity > product.Stock {
			return nil, uc.reject(ctx, domain.NewInsufficientStock(product.ID, product.Name, in.Quantity, product.Stock))
		}
		items = append(items, domain.NewOrderItem(product, in.Quantity))
	}

	var billing *domain.Address
	if input.BillingAddress != nil {
		b := toAddress(*input.BillingAddress)
		billing = &b
	}

	order, err := domain.NewOrder(domain.NewOrderParams{
		CustomerID:      principal.ID,
		Items:           items,
		PaymentMethod:   domain.PaymentMethod(input.PaymentMethod),
		ShippingAddress: toAddress(input.ShippingAddress),
		BillingAddress:  billing,
		Note:            input.Notes,
		Now:             uc.clock(),
	})
	if err != nil {
		return nil, err
	}

	// Persist and decrement stock in one transaction; a conditional decrement
	// that loses a race rolls the order back
	err = uc.tx.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := uc.numbers.NextOrderNumber(txCtx, order.CreatedAt.Year())
		if err != nil {
			return errors.OrInternal(err, "failed to allocate order number")
		}
		order.OrderNumber = number

		if err := uc.repo.Create(txCtx, order); err != nil {
			return errors.OrInternal(err, "failed to create order")
		}

		for _, item := range order.Items {
			if _, err := uc.catalog.AdjustStock(txCtx, item.ProductID, -item.Quantity); err != nil {
				return errors.OrInternal(err, "failed to update stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.reject(ctx, err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}
	if uc.metrics != nil {
		uc.metrics.OrderCreated(order.Pricing.Total)
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", order.CustomerID),
		zap.Int("items", len(order.Items)),
		zap.Int("units", order.ItemCount()),
		zap.String("total", order.Pricing.Total.String()),
	)

	return &CreateOrderOutput{Order: order}, nil
}

// CancelOrderInput represents the input for a customer cancellation
type CancelOrderInput struct {
	OrderID uint
	Reason  string
}

// CancelOrderOutput represents the output of cancelling an order
type CancelOrderOutput struct {
	Order *domain.Order
}

// CancelOrder cancels one of the principal's own orders and restores stock
func (uc *OrderUseCase) CancelOrder(ctx context.Context, principal auth.Principal, input CancelOrderInput) (*CancelOrderOutput, error) {
	if principal.ID == 0 {
		return nil, domain.ErrAuthRequired
	}

	var order *domain.Order
	err := uc.tx.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := uc.repo.GetForCustomer(txCtx, input.OrderID, principal.ID)
		if err != nil {
			return errors.OrInternal(err, "failed to get order")
		}

		if err := o.Cancel(principal.ID, input.Reason, uc.clock()); err != nil {
			return err
		}
		if err := uc.repo.SaveStatus(txCtx, o); err != nil {
			return errors.OrInternal(err, "failed to cancel order")
		}

		for _, item := range o.Items {
			if err := uc.restoreStock(txCtx, item); err != nil {
				return err
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	last, _ := order.Timeline.Last()
	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCancelled(ctx, order, last.Note); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order cancelled event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}
	if uc.metrics != nil {
		uc.metrics.OrderCancelled()
	}

	uc.log.WithContext(ctx).Info("order cancelled",
		zap.Uint("order_id", order.ID),
		zap.Uint("customer_id", order.CustomerID),
		zap.String("reason", last.Note),
	)

	return &CancelOrderOutput{Order: order}, nil
}

// restoreStock returns an item's quantity to the catalog. Products removed
// from the catalog since the order was placed are skipped.
func (uc *OrderUseCase) restoreStock(ctx context.Context, item domain.OrderItem) error {
	_, err := uc.catalog.AdjustStock(ctx, item.ProductID, item.Quantity)
	if err == nil {
		return nil
	}
	if errors.HasReason(err, domain.ReasonProductNotFound) {
		uc.log.WithContext(ctx).Warn("skipping stock restore for missing product",
			zap.Uint("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity),
		)
		return nil
	}
	return errors.OrInternal(err, "failed to restore stock")
}

// UpdateStatusInput represents an admin status override
type UpdateStatusInput struct {
	OrderID uint   `json:"-"`
	Status  string `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	Note    string `json:"note" validate:"max=1000"`
}

// UpdateStatusOutput represents the output of an admin status override
type UpdateStatusOutput struct {
	Order       *domain.Order
	StatusLabel string
}

// AdminUpdateStatus sets any status on any order. There is no transition
// graph; every change is appended to the timeline.
func (uc *OrderUseCase) AdminUpdateStatus(ctx context.Context, principal auth.Principal, input UpdateStatusInput) (*UpdateStatusOutput, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAdminRequired
	}
	if err := uc.validateStruct(input); err != nil {
		return nil, err
	}

	status := domain.OrderStatus(input.Status)
	var (
		order    *domain.Order
		previous domain.OrderStatus
	)
	err := uc.tx.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := uc.repo.GetForUpdate(txCtx, input.OrderID)
		if err != nil {
			return errors.OrInternal(err, "failed to get order")
		}

		previous = o.Status
		if err := o.SetStatus(status, principal.ID, input.Note, uc.clock()); err != nil {
			return err
		}
		if err := uc.repo.SaveStatus(txCtx, o); err != nil {
			return errors.OrInternal(err, "failed to update order status")
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order status changed event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}
	if uc.metrics != nil {
		uc.metrics.OrderStatusChanged(previous, order.Status)
	}

	uc.log.WithContext(ctx).Info("order status updated",
		zap.Uint("order_id", order.ID),
		zap.Uint("admin_id", principal.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)

	return &UpdateStatusOutput{Order: order, StatusLabel: order.Status.Label()}, nil
}

func (uc *OrderUseCase) reject(ctx context.Context, err error) error {
	if uc.metrics != nil {
		reason := errors.CodeInternal
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			reason = appErr.Code
			if appErr.Reason != "" {
				reason = appErr.Reason
			}
		}
		uc.metrics.OrderRejected(reason)
	}
	uc.log.WithContext(ctx).Warn("order rejected", zap.Error(err))
	return err
}

func toAddress(in AddressInput) domain.Address {
	return domain.Address{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Country:   in.Country,
		Phone:     in.Phone,
	}
}
