package infrastructure

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/orders/application"
	"storefront/internal/orders/domain"
	"storefront/pkg/auth"
	"storefront/pkg/errors"
	"storefront/pkg/middleware"
)

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the customer and admin order routes. Both groups
// require a bearer token; the admin group also requires an admin role.
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup, verifier *auth.TokenVerifier) {
	orders := r.Group("/orders", middleware.Authenticate(verifier))
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/cancel", h.CancelOrder)
	}

	admin := r.Group("/admin/orders", middleware.Authenticate(verifier), middleware.RequireAdmin())
	{
		admin.GET("", h.AdminListOrders)
		admin.GET("/:id", h.AdminGetOrder)
		admin.PUT("/:id/status", h.AdminUpdateStatus)
	}
}

// AddressResponse is a postal address in responses
type AddressResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ProductID   uint   `json:"product"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Total       string `json:"total"`
}

// PricingResponse holds the order amounts as decimal strings
type PricingResponse struct {
	Subtotal       string `json:"subtotal"`
	Tax            string `json:"tax"`
	Shipping       string `json:"shipping"`
	Discount       string `json:"discount"`
	Total          string `json:"total"`
	FormattedTotal string `json:"formattedTotal"`
}

// TimelineEntryResponse is one status history entry
type TimelineEntryResponse struct {
	Status    string `json:"status"`
	Note      string `json:"note"`
	UpdatedBy uint   `json:"updatedBy"`
	Timestamp string `json:"timestamp"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	ID              uint                    `json:"id"`
	OrderNumber     string                  `json:"orderNumber"`
	Customer        uint                    `json:"customer"`
	Items           []OrderItemResponse     `json:"items"`
	Pricing         PricingResponse         `json:"pricing"`
	PaymentMethod   string                  `json:"paymentMethod"`
	PaymentStatus   string                  `json:"paymentStatus"`
	ShippingAddress AddressResponse         `json:"shippingAddress"`
	BillingAddress  AddressResponse         `json:"billingAddress"`
	Notes           string                  `json:"notes,omitempty"`
	Status          string                  `json:"status"`
	StatusLabel     string                  `json:"statusVN"`
	Timeline        []TimelineEntryResponse `json:"timeline"`
	CreatedAt       string                  `json:"createdAt"`
	UpdatedAt       string                  `json:"updatedAt"`
	DeliveredAt     *string                 `json:"deliveredAt,omitempty"`
	CancelledAt     *string                 `json:"cancelledAt,omitempty"`
}

// CancelOrderRequest is the optional body for a cancellation
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// UpdateStatusRequest is the body for an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// CreateOrder handles POST /orders
//
//	@Summary	Place an order
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		application.CreateOrderInput	true	"Cart and checkout details"
//	@Success	201		{object}	OrderResponse
//	@Failure	400		{object}	errors.ErrorResponse
//	@Failure	404		{object}	errors.ErrorResponse
//	@Failure	409		{object}	errors.ErrorResponse
//	@Router		/orders [post]
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req application.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.CreateOrder(c.Request.Context(), principal(c), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toOrderResponse(output.Order),
		"message":  "Order created successfully",
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ListOrders handles GET /orders
//
//	@Summary	List the caller's orders
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int		false	"Page number"
//	@Param		limit	query		int		false	"Page size"
//	@Param		status	query		string	false	"Status filter"
//	@Success	200		{array}		OrderResponse
//	@Router		/orders [get]
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	output, err := h.useCase.ListOrders(c.Request.Context(), principal(c), application.ListOrdersInput{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Status: c.Query("status"),
	})
	if err != nil {
		c.Error(err)
		return
	}

	respondList(c, output)
}

// GetOrder handles GET /orders/:id
//
//	@Summary	Get one of the caller's orders
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	errors.ErrorResponse
//	@Router		/orders/{id} [get]
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	output, err := h.useCase.GetOrder(c.Request.Context(), principal(c), application.GetOrderInput{ID: id})
	if err != nil {
		c.Error(err)
		return
	}

	respondOrder(c, output.Order, "")
}

// CancelOrder handles PUT /orders/:id/cancel
//
//	@Summary	Cancel one of the caller's orders
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"Order ID"
//	@Param		body	body		CancelOrderRequest	false	"Cancellation reason"
//	@Success	200		{object}	OrderResponse
//	@Failure	404		{object}	errors.ErrorResponse
//	@Failure	409		{object}	errors.ErrorResponse
//	@Router		/orders/{id}/cancel [put]
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		// the body is optional; an empty one decodes to io.EOF
		if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
			c.Error(errors.NewValidation("invalid request body", err.Error()))
			return
		}
	}

	output, err := h.useCase.CancelOrder(c.Request.Context(), principal(c), application.CancelOrderInput{
		OrderID: id,
		Reason:  req.Reason,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respondOrder(c, output.Order, "Order cancelled successfully")
}

// AdminListOrders handles GET /admin/orders
//
//	@Summary	List all orders
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page			query		int		false	"Page number"
//	@Param		limit			query		int		false	"Page size"
//	@Param		status			query		string	false	"Status filter"
//	@Param		paymentStatus	query		string	false	"Payment status filter"
//	@Param		search			query		string	false	"Order number or customer name"
//	@Success	200				{array}		OrderResponse
//	@Failure	403				{object}	errors.ErrorResponse
//	@Router		/admin/orders [get]
func (h *HTTPHandler) AdminListOrders(c *gin.Context) {
	output, err := h.useCase.AdminListOrders(c.Request.Context(), principal(c), application.AdminListOrdersInput{
		Page:          queryInt(c, "page"),
		Limit:         queryInt(c, "limit"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		Search:        c.Query("search"),
	})
	if err != nil {
		c.Error(err)
		return
	}

	respondList(c, output)
}

// AdminGetOrder handles GET /admin/orders/:id
//
//	@Summary	Get any order
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	errors.ErrorResponse
//	@Router		/admin/orders/{id} [get]
func (h *HTTPHandler) AdminGetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	output, err := h.useCase.AdminGetOrder(c.Request.Context(), principal(c), application.GetOrderInput{ID: id})
	if err != nil {
		c.Error(err)
		return
	}

	respondOrder(c, output.Order, "")
}

// AdminUpdateStatus handles PUT /admin/orders/:id/status
//
//	@Summary	Set an order's status
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"Order ID"
//	@Param		body	body		UpdateStatusRequest	true	"New status and note"
//	@Success	200		{object}	OrderResponse
//	@Failure	400		{object}	errors.ErrorResponse
//	@Failure	403		{object}	errors.ErrorResponse
//	@Failure	404		{object}	errors.ErrorResponse
//	@Router		/admin/orders/{id}/status [put]
func (h *HTTPHandler) AdminUpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.AdminUpdateStatus(c.Request.Context(), principal(c), application.UpdateStatusInput{
		OrderID: id,
		Status:  req.Status,
		Note:    req.Note,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respondOrder(c, output.Order, "Order status updated to "+output.StatusLabel)
}

func principal(c *gin.Context) auth.Principal {
	p, _ := auth.FromContext(c.Request.Context())
	return p
}

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.Error(errors.NewValidation("invalid order id", nil))
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func respondOrder(c *gin.Context, order *domain.Order, message string) {
	body := gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(http.StatusOK, body)
}

func respondList(c *gin.Context, output *application.ListOrdersOutput) {
	data := make([]OrderResponse, len(output.Orders))
	for i, o := range output.Orders {
		data[i] = toOrderResponse(o)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"pagination": output.Pagination,
		"trace_id":   c.GetString(middleware.TraceIDKey),
	})
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice.StringFixed(2),
			Total:       item.LineTotal.StringFixed(2),
		}
	}

	entries := o.Timeline.Entries()
	timeline := make([]TimelineEntryResponse, len(entries))
	for i, e := range entries {
		timeline[i] = TimelineEntryResponse{
			Status:    string(e.Status),
			Note:      e.Note,
			UpdatedBy: e.ActorID,
			Timestamp: formatTime(e.CreatedAt),
		}
	}

	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Customer:    o.CustomerID,
		Items:       items,
		Pricing: PricingResponse{
			Subtotal:       o.Pricing.Subtotal.StringFixed(2),
			Tax:            o.Pricing.Tax.StringFixed(2),
			Shipping:       o.Pricing.Shipping.StringFixed(2),
			Discount:       o.Pricing.Discount.StringFixed(2),
			Total:          o.Pricing.Total.StringFixed(2),
			FormattedTotal: domain.FormatVND(o.Pricing.Total),
		},
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		ShippingAddress: AddressResponse(o.ShippingAddress),
		BillingAddress:  AddressResponse(o.BillingAddress),
		Notes:           o.CustomerNote,
		Status:          string(o.Status),
		StatusLabel:     o.Status.Label(),
		Timeline:        timeline,
		CreatedAt:       formatTime(o.CreatedAt),
		UpdatedAt:       formatTime(o.UpdatedAt),
		DeliveredAt:     formatTimePtr(o.DeliveredAt),
		CancelledAt:     formatTimePtr(o.CancelledAt),
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
