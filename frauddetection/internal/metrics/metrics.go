// Package metrics defines the Prometheus collectors of the fraud
// detection service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks rule evaluation outcomes.
type Metrics struct {
	EvaluationsTotal *prometheus.CounterVec
}

// New registers the evaluation collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudwatch_fraud_evaluations_total",
				Help: "Total fraud rule evaluations by outcome",
			},
			[]string{"fraudulent"},
		),
	}
}

// RecordEvaluation counts one rule engine evaluation.
func (m *Metrics) RecordEvaluation(fraudulent bool) {
	if m == nil {
		return
	}
	outcome := "false"
	if fraudulent {
		outcome = "true"
	}
	m.EvaluationsTotal.WithLabelValues(outcome).Inc()
}

// DLQMetrics tracks dead-letter reprocessing outcomes.
type DLQMetrics struct {
	Received    prometheus.Counter
	Reprocessed prometheus.Counter
	Failed      prometheus.Counter
}

// NewDLQMetrics registers the dead-letter collectors with reg.
func NewDLQMetrics(reg prometheus.Registerer) *DLQMetrics {
	factory := promauto.With(reg)
	return &DLQMetrics{
		Received: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraudwatch_fraud_dlq_events_received_total",
			Help: "Total DLQ events received",
		}),
		Reprocessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraudwatch_fraud_dlq_events_reprocessed_total",
			Help: "Total DLQ events reprocessed successfully",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraudwatch_fraud_dlq_events_failed_total",
			Help: "Total DLQ events that failed reprocessing",
		}),
	}
}
