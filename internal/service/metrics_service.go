package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// domain counters the validation pipeline increments.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	visitsAssembled     prometheus.Counter
	allocationsRejected prometheus.Counter
	policyViolations    prometheus.Counter
	claimsFlagged       prometheus.Counter
	remindersDispatched prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reference_cache_hits_total",
		Help: "Total reference cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reference_cache_misses_total",
		Help: "Total reference cache misses",
	})

	visitsAssembled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visits_assembled_total",
		Help: "Total number of visit records committed",
	})

	allocationsRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_rejections_total",
		Help: "Total specimen commits rejected for exhausted allocation",
	})

	policyViolations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expense_policy_violations_total",
		Help: "Total expenses recorded over their category daily limit",
	})

	claimsFlagged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tada_claims_flagged_total",
		Help: "Total TA/DA claims flagged over the claim ceiling",
	})

	remindersDispatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visit_reminders_dispatched_total",
		Help: "Total next-visit reminders dispatched",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		visitsAssembled, allocationsRejected, policyViolations, claimsFlagged,
		remindersDispatched, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:            registry,
		handler:             handler,
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		visitsAssembled:     visitsAssembled,
		allocationsRejected: allocationsRejected,
		policyViolations:    policyViolations,
		claimsFlagged:       claimsFlagged,
		remindersDispatched: remindersDispatched,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a reference cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// CountVisitAssembled increments the committed-visit counter.
func (m *MetricsService) CountVisitAssembled() {
	if m == nil {
		return
	}
	m.visitsAssembled.Inc()
}

// CountAllocationRejected increments the exhausted-allocation counter.
func (m *MetricsService) CountAllocationRejected() {
	if m == nil {
		return
	}
	m.allocationsRejected.Inc()
}

// CountPolicyViolation increments the expense policy violation counter.
func (m *MetricsService) CountPolicyViolation() {
	if m == nil {
		return
	}
	m.policyViolations.Inc()
}

// CountClaimFlagged increments the over-ceiling claim counter.
func (m *MetricsService) CountClaimFlagged() {
	if m == nil {
		return
	}
	m.claimsFlagged.Inc()
}

// CountReminderDispatched increments the dispatched-reminder counter.
func (m *MetricsService) CountReminderDispatched() {
	if m == nil {
		return
	}
	m.remindersDispatched.Inc()
}
