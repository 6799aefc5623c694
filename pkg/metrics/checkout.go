package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout workflow outcomes.
type CheckoutMetrics struct {
	submissions   *prometheus.CounterVec
	submitSeconds *prometheus.HistogramVec
	qrGenerations *prometheus.CounterVec
	ordersSaved   prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by payment method and result.",
	}, []string{"method", "result"})
	submitSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	qrGenerations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vietqr_generations_total",
		Help: "VietQR image generations by result.",
	}, []string{"result"})
	ordersSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "local_orders_saved_total",
		Help: "Order records written to the local store.",
	})
	reg.MustRegister(submissions, submitSeconds, qrGenerations, ordersSaved)
	return &CheckoutMetrics{
		submissions:   submissions,
		submitSeconds: submitSeconds,
		qrGenerations: qrGenerations,
		ordersSaved:   ordersSaved,
	}
}

// ObserveSubmission records one checkout submission attempt.
func (c *CheckoutMetrics) ObserveSubmission(method, result string, duration time.Duration) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(method), normalizeLabel(result)).Inc()
	c.submitSeconds.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncQRGeneration counts a VietQR generation attempt by result.
func (c *CheckoutMetrics) IncQRGeneration(result string) {
	if c == nil || c.qrGenerations == nil {
		return
	}
	c.qrGenerations.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncOrderSaved counts a local order write.
func (c *CheckoutMetrics) IncOrderSaved() {
	if c == nil || c.ordersSaved == nil {
		return
	}
	c.ordersSaved.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
