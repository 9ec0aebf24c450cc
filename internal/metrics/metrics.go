// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for the fetch-and-join
// pipeline and the filter surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kzrec",
		Name:      "pages_fetched_total",
		Help:      "Pages fetched from upstream list resources",
	}, []string{"resource"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kzrec",
		Name:      "fetch_failures_total",
		Help:      "Aborted pagination chains per resource",
	}, []string{"resource"})

	rowsEnriched = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kzrec",
		Name:      "rows_enriched",
		Help:      "Rows in the last enriched snapshot",
	})

	joinMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kzrec",
		Name:      "join_misses_total",
		Help:      "Recordings with no matching reference document",
	}, []string{"kind"}) // kind=device|user|cdr

	reevaluations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kzrec",
		Name:      "filter_reevaluations_total",
		Help:      "Full filter re-evaluations over the row set",
	})

	visibleRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kzrec",
		Name:      "visible_rows",
		Help:      "Rows visible after the last filter evaluation",
	})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kzrec",
		Name:      "refresh_duration_seconds",
		Help:      "Wall time of a full fetch-and-join refresh",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordPageFetch counts one successfully fetched page for a resource.
func RecordPageFetch(resource string) {
	pagesFetched.WithLabelValues(resource).Inc()
}

// RecordFetchFailure counts one aborted pagination chain for a resource.
func RecordFetchFailure(resource string) {
	fetchFailures.WithLabelValues(resource).Inc()
}

// SetRowsEnriched records the size of the last enriched snapshot.
func SetRowsEnriched(n int) {
	rowsEnriched.Set(float64(n))
}

// RecordJoinMiss counts a recording that found no reference match.
func RecordJoinMiss(kind string) {
	joinMisses.WithLabelValues(kind).Inc()
}

// RecordReevaluation counts one full filter pass.
func RecordReevaluation() {
	reevaluations.Inc()
}

// SetVisibleRows records the visible subset size of the last filter pass.
func SetVisibleRows(n int) {
	visibleRows.Set(float64(n))
}

// ObserveRefreshDuration records the wall time of a refresh.
func ObserveRefreshDuration(d time.Duration) {
	refreshDuration.Observe(d.Seconds())
}
