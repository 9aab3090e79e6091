// Package observability registers prometheus metrics for the sync engine.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	syncRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "sync",
		Name:      "records_total",
		Help:      "Canonical records processed per source.",
	}, []string{"source"})
	syncFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "sync",
		Name:      "failures_total",
		Help:      "Source syncs that ended in a failed status.",
	}, []string{"source"})
	reconcileMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "reconcile",
		Name:      "matched_total",
		Help:      "Secondary-source candidates matched to an existing session.",
	})
	reconcileUnmatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "reconcile",
		Name:      "unmatched_total",
		Help:      "Secondary-source candidates discarded without a match.",
	})
	batchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthsync",
		Subsystem: "persistence",
		Name:      "batch_failures_total",
		Help:      "Upsert batches that failed and were skipped.",
	})
)

func init() {
	prometheus.MustRegister(syncRecords, syncFailures, reconcileMatched, reconcileUnmatched, batchFailures)
}

// RecordSync counts processed records for a source.
func RecordSync(source string, processed int) {
	syncRecords.WithLabelValues(source).Add(float64(processed))
}

// RecordSyncFailure counts a failed source sync.
func RecordSyncFailure(source string) {
	syncFailures.WithLabelValues(source).Inc()
}

// RecordReconcile counts one reconciliation pass.
func RecordReconcile(matched, unmatched int) {
	reconcileMatched.Add(float64(matched))
	reconcileUnmatched.Add(float64(unmatched))
}

// RecordBatchFailure counts one skipped upsert batch.
func RecordBatchFailure() {
	batchFailures.Inc()
}
