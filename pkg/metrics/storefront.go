package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart activity and upstream gateway calls.
type StorefrontMetrics struct {
	cartOps         *prometheus.CounterVec
	checkoutResult  *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"operation"})
	checkoutResult := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_results_total",
		Help: "Checkout attempts by flow and outcome.",
	}, []string{"flow", "outcome"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of upstream product gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	reg.MustRegister(cartOps, checkoutResult, gatewayDuration)
	return &StorefrontMetrics{
		cartOps:         cartOps,
		checkoutResult:  checkoutResult,
		gatewayDuration: gatewayDuration,
	}
}

// IncCartOp increments the counter for the named cart operation.
func (m *StorefrontMetrics) IncCartOp(operation string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncCheckout records one checkout attempt for the given flow and outcome.
func (m *StorefrontMetrics) IncCheckout(flow, outcome string) {
	if m == nil || m.checkoutResult == nil {
		return
	}
	m.checkoutResult.WithLabelValues(normalizeLabel(flow), normalizeLabel(outcome)).Inc()
}

// ObserveGateway records the duration of one gateway call.
func (m *StorefrontMetrics) ObserveGateway(endpoint string, duration time.Duration) {
	if m == nil || m.gatewayDuration == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
