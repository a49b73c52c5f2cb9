// Package metrics exposes Prometheus instruments for the API and worker.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "finlens_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultEmpty   = "empty"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	modelCalls   *prometheus.CounterVec
	modelLatency *prometheus.HistogramVec

	transactionsExtracted prometheus.Counter
	recordsCommitted      *prometheus.CounterVec
	summaryCache          *prometheus.CounterVec
	eventsPublished       *prometheus.CounterVec
	syncProcessed         *prometheus.CounterVec
	exportsRendered       *prometheus.CounterVec
)

// Init registers every instrument with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)

		modelCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "model_calls_total",
				Help: "Total text generation calls by operation and result",
			},
			[]string{"operation", "result"},
		)
		modelLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "model_call_duration_seconds",
				Help:    "Text generation latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"operation"},
		)

		transactionsExtracted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_transactions_extracted_total",
				Help: "Total transactions extracted from uploaded statements",
			},
		)
		recordsCommitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_committed_total",
				Help: "Total records stored by kind",
			},
			[]string{"kind"},
		)
		summaryCache = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_cache_lookups_total",
				Help: "Summary cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		eventsPublished = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_published_total",
				Help: "Record sync events published by result",
			},
			[]string{"result"},
		)
		syncProcessed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sync_messages_processed_total",
				Help: "Record sync messages handled by the worker by result",
			},
			[]string{"result"},
		)
		exportsRendered = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_rendered_total",
				Help: "Statement and trend downloads by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			modelCalls,
			modelLatency,
			transactionsExtracted,
			recordsCommitted,
			summaryCache,
			eventsPublished,
			syncProcessed,
			exportsRendered,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTP(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
	}
}

// ObserveModelCall records one generator round trip.
func ObserveModelCall(operation, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if modelCalls != nil {
		modelCalls.WithLabelValues(operation, result).Inc()
	}
	if modelLatency != nil {
		modelLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

func AddTransactionsExtracted(n int) {
	if transactionsExtracted != nil && n > 0 {
		transactionsExtracted.Add(float64(n))
	}
}

func IncRecordCommitted(kind string) {
	if recordsCommitted != nil {
		recordsCommitted.WithLabelValues(kind).Inc()
	}
}

func ObserveSummaryCache(hit bool) {
	if summaryCache == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	summaryCache.WithLabelValues(outcome).Inc()
}

func IncEventPublished(result string) {
	if eventsPublished != nil {
		eventsPublished.WithLabelValues(result).Inc()
	}
}

func IncSyncProcessed(result string) {
	if syncProcessed != nil {
		syncProcessed.WithLabelValues(result).Inc()
	}
}

func IncExport(format, result string) {
	if exportsRendered != nil {
		exportsRendered.WithLabelValues(format, result).Inc()
	}
}

// Result maps an error to ResultSuccess or ResultError.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
