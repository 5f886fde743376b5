// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitwiser"

// Metrics bundles every collector the server updates.
type Metrics struct {
	RPCRequests      *prometheus.CounterVec
	RPCDuration      *prometheus.HistogramVec
	ActiveSessions   prometheus.Gauge
	BillsFinalized   prometheus.Counter
	PaymentsRecorded prometheus.Counter
	SkippedEntries   prometheus.Counter
	EventsPublished  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "split_sessions_active",
			Help:      "Split sessions currently held in memory.",
		}),
		BillsFinalized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_finalized_total",
			Help:      "Bills written to a ledger.",
		}),
		PaymentsRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments written to a ledger.",
		}),
		SkippedEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_skipped_total",
			Help:      "Malformed ledger entries left out of a balance computation.",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Ledger events handed to the publisher, by type and result.",
		}, []string{"type", "result"}),
	}
}
