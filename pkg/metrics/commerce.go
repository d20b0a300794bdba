package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics records checkout and settlement activity.
type CommerceMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	ordersPlaced     *prometheus.CounterVec
	checkoutFailures *prometheus.CounterVec
	paymentsCaptured *prometheus.CounterVec
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted by the transaction coordinator.",
	}, []string{"payment_method"})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts rejected or rolled back.",
	}, []string{"reason"})
	paymentsCaptured := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_captured_total",
		Help: "Payments marked captured, by confirmation source.",
	}, []string{"source"})
	reg.MustRegister(checkoutDuration, ordersPlaced, checkoutFailures, paymentsCaptured)
	return &CommerceMetrics{
		checkoutDuration: checkoutDuration,
		ordersPlaced:     ordersPlaced,
		checkoutFailures: checkoutFailures,
		paymentsCaptured: paymentsCaptured,
	}
}

// ObserveCheckout records the duration of a checkout transaction.
func (m *CommerceMetrics) ObserveCheckout(paymentMethod string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(paymentMethod)).Observe(duration.Seconds())
}

// IncOrderPlaced increments the placed-order counter.
func (m *CommerceMetrics) IncOrderPlaced(paymentMethod string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncCheckoutFailure increments the failure counter for the given reason.
func (m *CommerceMetrics) IncCheckoutFailure(reason string) {
	if m == nil || m.checkoutFailures == nil {
		return
	}
	m.checkoutFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncPaymentCaptured increments the captured counter for a confirmation source
// ("callback" or "webhook").
func (m *CommerceMetrics) IncPaymentCaptured(source string) {
	if m == nil || m.paymentsCaptured == nil {
		return
	}
	m.paymentsCaptured.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
