package adapters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"storefront/internal/orders/domain"
)

// PrometheusMetrics implements Metrics with Prometheus collectors
type PrometheusMetrics struct {
	created       prometheus.Counter
	revenue       prometheus.Counter
	cancelled     prometheus.Counter
	statusChanges *prometheus.CounterVec
	rejected      *prometheus.CounterVec
}

// NewPrometheusMetrics creates and registers the order metrics
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders successfully placed.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "revenue_vnd_total",
			Help:      "Sum of order totals at placement, in VND.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "cancelled_total",
			Help:      "Orders cancelled by customers.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Admin status changes by source and target status.",
		}, []string{"from", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "rejected_total",
			Help:      "Order placements rejected, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.created, m.revenue, m.cancelled, m.statusChanges, m.rejected)
	return m
}

// OrderCreated implements ports.Metrics
func (m *PrometheusMetrics) OrderCreated(total decimal.Decimal) {
	m.created.Inc()
	m.revenue.Add(total.InexactFloat64())
}

// OrderCancelled implements ports.Metrics
func (m *PrometheusMetrics) OrderCancelled() {
	m.cancelled.Inc()
}

// OrderStatusChanged implements ports.Metrics
func (m *PrometheusMetrics) OrderStatusChanged(from, to domain.OrderStatus) {
	m.statusChanges.WithLabelValues(string(from), string(to)).Inc()
}

// OrderRejected implements ports.Metrics
func (m *PrometheusMetrics) OrderRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}
