package metrics

import (
	"time"

	apperrors "trace-fund-go/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const statusOK = "OK"

const (
	opInitializeCampaign = "initialize_campaign"
	opDonate             = "donate"
	opWithdraw           = "withdraw"
	opCloseCampaign      = "close_campaign"
)

var operations = []string{opInitializeCampaign, opDonate, opWithdraw, opCloseCampaign}

// Metrics holds all the Prometheus metrics for the campaign ledger
type Metrics struct {
	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	LamportsMoved     *prometheus.CounterVec

	// Notification metrics
	EventDeliveries *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracefund_operations_total",
				Help: "Total number of campaign operations by outcome",
			},
			[]string{"operation", "code"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracefund_operation_duration_seconds",
				Help:    "Campaign operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		LamportsMoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracefund_lamports_moved_total",
				Help: "Lamports moved by successful operations",
			},
			[]string{"operation"},
		),

		EventDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracefund_event_deliveries_total",
				Help: "Event publish attempts per sink",
			},
			[]string{"sink", "status"},
		),
	}

	// Every operation/outcome pair is exported from the start so rate
	// queries see zero instead of a missing series.
	for _, op := range operations {
		m.OperationsTotal.WithLabelValues(op, statusOK)
		for _, code := range apperrors.Codes {
			m.OperationsTotal.WithLabelValues(op, string(code))
		}
	}
	return m
}

// RecordOperation records one operation call with its outcome and duration
func (m *Metrics) RecordOperation(operation string, err error, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLamports adds the value moved by a successful operation
func (m *Metrics) RecordLamports(operation string, amount uint64) {
	m.LamportsMoved.WithLabelValues(operation).Add(float64(amount))
}

// RecordDelivery records a publish attempt to a notification sink
func (m *Metrics) RecordDelivery(sink string, err error) {
	status := "delivered"
	if err != nil {
		status = "failed"
	}
	m.EventDeliveries.WithLabelValues(sink, status).Inc()
}

func outcome(err error) string {
	if err == nil {
		return statusOK
	}
	return string(apperrors.CodeOf(err))
}
