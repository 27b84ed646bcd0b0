package domain

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every status an admin may set
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Chờ xử lý",
	OrderStatusConfirmed:  "Đã xác nhận",
	OrderStatusProcessing: "Đang xử lý",
	OrderStatusShipped:    "Đang giao hàng",
	OrderStatusDelivered:  "Đã giao hàng",
	OrderStatusCancelled:  "Đã hủy",
	OrderStatusRefunded:   "Đã hoàn tiền",
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Label returns the Vietnamese display label
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// CustomerCancellable reports whether the customer may still cancel.
// Admins are not bound by this; see Order.SetStatus.
func (s OrderStatus) CustomerCancellable() bool {
	switch s {
	case OrderStatusCancelled, OrderStatusShipped, OrderStatusDelivered:
		return false
	}
	return true
}

// PaymentMethod is the payment method tag recorded on an order
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodMomo         PaymentMethod = "momo"
	PaymentMethodZaloPay      PaymentMethod = "zalopay"
)

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCash:         "Thanh toán khi nhận hàng",
	PaymentMethodBankTransfer: "Chuyển khoản ngân hàng",
	PaymentMethodCreditCard:   "Thẻ tín dụng",
	PaymentMethodPaypal:       "PayPal",
	PaymentMethodMomo:         "Ví MoMo",
	PaymentMethodZaloPay:      "ZaloPay",
}

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodLabels[m]
	return ok
}

// Label returns the Vietnamese display label
func (m PaymentMethod) Label() string {
	if l, ok := paymentMethodLabels[m]; ok {
		return l
	}
	return string(m)
}

// PaymentStatus is recorded only; no gateway drives it.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
