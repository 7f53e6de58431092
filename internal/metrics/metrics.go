package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters the engine increments after each committed
// operation. A nil *Metrics is safe to use, so tests can pass nil.
type Metrics struct {
	OrdersCreated    prometheus.Counter
	OrdersCancelled  prometheus.Counter
	PaymentsRecorded *prometheus.CounterVec
	StockAdjustments *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos", Subsystem: "orders", Name: "created_total",
			Help: "Orders created.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos", Subsystem: "orders", Name: "cancelled_total",
			Help: "Orders cancelled.",
		}),
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos", Subsystem: "payments", Name: "recorded_total",
			Help: "Payments recorded, by method.",
		}, []string{"method"}),
		StockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos", Subsystem: "inventory", Name: "adjustments_total",
			Help: "Inventory transactions appended, by type.",
		}, []string{"type"}),
	}
	prometheus.MustRegister(m.OrdersCreated, m.OrdersCancelled, m.PaymentsRecorded, m.StockAdjustments)
	return m
}

func (m *Metrics) IncOrdersCreated() {
	if m != nil {
		m.OrdersCreated.Inc()
	}
}

func (m *Metrics) IncOrdersCancelled() {
	if m != nil {
		m.OrdersCancelled.Inc()
	}
}

func (m *Metrics) IncPayment(method string) {
	if m != nil {
		m.PaymentsRecorded.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) IncStockAdjustment(txType string) {
	if m != nil {
		m.StockAdjustments.WithLabelValues(txType).Inc()
	}
}
