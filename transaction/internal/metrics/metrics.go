// Package metrics defines the Prometheus collectors of the transaction
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ingest outcomes.
type Metrics struct {
	TransactionsAccepted prometheus.Counter
	RequestsRejected     *prometheus.CounterVec
}

// New registers the ingest collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransactionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraudwatch_transactions_accepted_total",
			Help: "Total transactions accepted and published",
		}),
		RequestsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudwatch_transaction_requests_rejected_total",
				Help: "Total transaction requests rejected by cause",
			},
			[]string{"cause"},
		),
	}
}

// RecordAccepted counts one accepted transaction.
func (m *Metrics) RecordAccepted() {
	if m == nil {
		return
	}
	m.TransactionsAccepted.Inc()
}

// RecordRejected counts one rejected request.
func (m *Metrics) RecordRejected(cause string) {
	if m == nil {
		return
	}
	m.RequestsRejected.WithLabelValues(cause).Inc()
}
