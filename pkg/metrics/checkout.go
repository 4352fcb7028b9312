package metrics

import "github.com/prometheus/client_golang/prometheus"

// Checkout outcomes used as label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// CheckoutMetrics counts checkout sessions, payment completions and restocks.
type CheckoutMetrics struct {
	sessions       *prometheus.CounterVec
	completions    *prometheus.CounterVec
	restoredOrders prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session attempts by outcome and failure reason.",
	}, []string{"outcome", "reason"})
	completions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_completions_total",
		Help: "Payment completion webhooks by outcome.",
	}, []string{"outcome"})
	restored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unpaid_orders_restored_total",
		Help: "Expired unpaid orders deleted with their stock returned.",
	})
	reg.MustRegister(sessions, completions, restored)
	return &CheckoutMetrics{
		sessions:       sessions,
		completions:    completions,
		restoredOrders: restored,
	}
}

// IncSession records a checkout attempt. reason is empty on success.
func (c *CheckoutMetrics) IncSession(outcome, reason string) {
	if c == nil || c.sessions == nil {
		return
	}
	c.sessions.WithLabelValues(outcome, reason).Inc()
}

func (c *CheckoutMetrics) IncCompletion(outcome string) {
	if c == nil || c.completions == nil {
		return
	}
	c.completions.WithLabelValues(outcome).Inc()
}

func (c *CheckoutMetrics) AddRestoredOrders(n int) {
	if c == nil || c.restoredOrders == nil || n <= 0 {
		return
	}
	c.restoredOrders.Add(float64(n))
}
