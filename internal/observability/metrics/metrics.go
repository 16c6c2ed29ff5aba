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
	metricPrefix = "finboard_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	cacheRequests *prometheus.CounterVec

	recordsWritten *prometheus.CounterVec

	reportRenders       *prometheus.CounterVec
	reportRenderLatency *prometheus.HistogramVec

	syncMessages *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)

		cacheRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_requests_total",
				Help: "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		)

		recordsWritten = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_written_total",
				Help: "Records written by kind and operation",
			},
			[]string{"kind", "op"},
		)

		reportRenders = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_renders_total",
				Help: "Report renders by format and result",
			},
			[]string{"format", "result"},
		)
		reportRenderLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_render_latency_seconds",
				Help:    "Report render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		syncMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sync_messages_total",
				Help: "Sheets mirror sync attempts by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			cacheRequests,
			recordsWritten,
			reportRenders,
			reportRenderLatency,
			syncMessages,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one finished request.
func ObserveHTTP(route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// RecordWritten counts a create, update or delete of a record.
func RecordWritten(kind, op string) {
	if recordsWritten != nil {
		recordsWritten.WithLabelValues(kind, op).Inc()
	}
}

// ObserveReport records a PDF or XLSX render.
func ObserveReport(format string, err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if reportRenders != nil {
		reportRenders.WithLabelValues(format, result).Inc()
	}
	if reportRenderLatency != nil {
		reportRenderLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// ObserveSync counts one mirror attempt.
func ObserveSync(err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if syncMessages != nil {
		syncMessages.WithLabelValues(result).Inc()
	}
}

// CacheObserver feeds cache hit and miss events into cache_requests_total.
type CacheObserver struct{}

func (CacheObserver) CacheHit(cache string) {
	if cacheRequests != nil {
		cacheRequests.WithLabelValues(cache, "hit").Inc()
	}
}

func (CacheObserver) CacheMiss(cache string) {
	if cacheRequests != nil {
		cacheRequests.WithLabelValues(cache, "miss").Inc()
	}
}
