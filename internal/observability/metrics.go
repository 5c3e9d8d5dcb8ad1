package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	actionsDispatchedTotal *prometheus.CounterVec
	snapshotSavesTotal     *prometheus.CounterVec
	snapshotLoadsTotal     *prometheus.CounterVec
	syncSubscribersActive  prometheus.Gauge
	syncEventsTotal        *prometheus.CounterVec
	reportCacheTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podgrade_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "podgrade_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podgrade_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		actionsDispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podgrade_actions_dispatched_total",
			Help: "Actions dispatched to the state store, by type and whether they changed state.",
		}, []string{"type", "result"})

		snapshotSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podgrade_snapshot_saves_total",
			Help: "Snapshot save attempts by backend and result.",
		}, []string{"backend", "result"})

		snapshotLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podgrade_snapshot_loads_total",
			Help: "Snapshot load attempts by backend and result.",
		}, []string{"backend", "result"})

		syncSubscribersActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "podgrade_sync_subscribers_active",
			Help: "Number of live snapshot stream subscribers.",
		})

		syncEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podgrade_sync_events_total",
			Help: "Remote snapshot push events by transport and outcome.",
		}, []string{"transport", "outcome"})

		reportCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podgrade_report_cache_total",
			Help: "Grade report cache lookups by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			actionsDispatchedTotal,
			snapshotSavesTotal,
			snapshotLoadsTotal,
			syncSubscribersActive,
			syncEventsTotal,
			reportCacheTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

func ActionsDispatchedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return actionsDispatchedTotal
}

func SnapshotSavesTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return snapshotSavesTotal
}

func SnapshotLoadsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return snapshotLoadsTotal
}

func SyncSubscribersActive() prometheus.Gauge {
	RegisterMetrics()
	return syncSubscribersActive
}

func SyncEventsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return syncEventsTotal
}

func ReportCacheTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return reportCacheTotal
}
