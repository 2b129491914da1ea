// Package metrics exposes the bridge's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ptb"

// TransactionsTotal counts finished reader operations by outcome.
var TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "orchestrator",
	Name:      "transactions_total",
	Help:      "Total reader operations by operation and final status.",
}, []string{"operation", "status"})

// TransactionDuration tracks wall time from begin to final status.
var TransactionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "orchestrator",
	Name:      "transaction_duration_seconds",
	Help:      "Reader operation duration in seconds.",
	Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 90},
}, []string{"operation"})

// ReplaysTotal counts operations answered from a stored approved result.
var ReplaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "orchestrator",
	Name:      "replays_total",
	Help:      "Operations answered from a previously approved result.",
}, []string{"source"})

// ReaderBusyTotal counts operations rejected because the reader was locked.
var ReaderBusyTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "orchestrator",
	Name:      "reader_busy_total",
	Help:      "Operations rejected while another transaction held the reader.",
})

// AmbiguousTotal counts transactions flagged for reconciliation.
var AmbiguousTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "orchestrator",
	Name:      "ambiguous_total",
	Help:      "Transactions left in an ambiguous state and flagged for reconciliation.",
})

// ReaderOnline is 1 when the last identity ping of a reader succeeded.
var ReaderOnline = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "reader",
	Name:      "online",
	Help:      "Whether a reader answered its last identity ping (1) or not (0).",
}, []string{"reader_id"})

// FailoverSwaps counts persisted primary/backup swaps.
var FailoverSwaps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "binding",
	Name:      "swaps_total",
	Help:      "Total primary/backup reader swaps.",
})

// RelayCommands counts relay commands by final status, from either side of the queue.
var RelayCommands = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "relay",
	Name:      "commands_total",
	Help:      "Relay commands by type and final status.",
}, []string{"type", "status"})

// ObserveTransaction records a finished operation.
func ObserveTransaction(operation, status string, started time.Time) {
	TransactionsTotal.WithLabelValues(operation, status).Inc()
	TransactionDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// SetReaderOnline updates the reader gauge.
func SetReaderOnline(readerID string, online bool) {
	v := 0.0
	if online {
		v = 1
	}
	ReaderOnline.WithLabelValues(readerID).Set(v)
}
