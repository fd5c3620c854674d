// Package metrics defines the Prometheus collectors of the alert service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks alert creation and notification delivery.
type Metrics struct {
	AlertsCreated      prometheus.Counter
	RiskScores         prometheus.Histogram
	NotificationsTotal *prometheus.CounterVec
}

// New registers the alert collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AlertsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraudwatch_alerts_created_total",
			Help: "Total fraud alerts persisted",
		}),
		RiskScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraudwatch_alert_risk_score",
			Help:    "Risk score distribution of persisted alerts",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudwatch_alert_notifications_total",
				Help: "Total notification deliveries by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
	}
}

// RecordAlertCreated counts one persisted alert and its score.
func (m *Metrics) RecordAlertCreated(riskScore int) {
	if m == nil {
		return
	}
	m.AlertsCreated.Inc()
	m.RiskScores.Observe(float64(riskScore))
}

// RecordNotification counts one channel delivery attempt.
func (m *Metrics) RecordNotification(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.NotificationsTotal.WithLabelValues(channel, outcome).Inc()
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
			Name: "fraudwatch_alert_dlq_events_received_total",
			Help: "Total DLQ events received",
		}),
		Reprocessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraudwatch_alert_dlq_events_reprocessed_total",
			Help: "Total DLQ events reprocessed successfully",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraudwatch_alert_dlq_events_failed_total",
			Help: "Total DLQ events that failed reprocessing",
		}),
	}
}
