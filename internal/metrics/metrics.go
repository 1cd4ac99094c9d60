// Package metrics defines the Prometheus collectors for billing operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeNotFound   = "not_found"
	OutcomeStorageErr = "storage_error"
	OutcomeIOErr      = "io_error"
)

// Recorder is what the billing layer reports to.
type Recorder interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	IncCustomerCreated()
	ObserveBillAmount(amount float64)
}

// BillingMetrics holds the registered collectors.
type BillingMetrics struct {
	operations       *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	customersCreated prometheus.Counter
	billAmount       prometheus.Histogram
}

var _ Recorder = (*BillingMetrics)(nil)

// New registers the billing collectors on registry.
func New(registry prometheus.Registerer) *BillingMetrics {
	factory := promauto.With(registry)

	return &BillingMetrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_operations_total",
				Help: "Billing operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billing_operation_duration_seconds",
				Help:    "Billing operation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		customersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "billing_customers_created_total",
			Help: "Customers created on their first bill",
		}),
		billAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "billing_bill_amount",
			Help:    "Saved bill amounts",
			Buckets: prometheus.ExponentialBuckets(1, 10, 6), // 1 .. 100000
		}),
	}
}

func (m *BillingMetrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *BillingMetrics) IncCustomerCreated() {
	m.customersCreated.Inc()
}

func (m *BillingMetrics) ObserveBillAmount(amount float64) {
	m.billAmount.Observe(amount)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveOperation(string, string, time.Duration) {}
func (Nop) IncCustomerCreated()                            {}
func (Nop) ObserveBillAmount(float64)                      {}
