package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric vector emitted by the service.  A nil
// *AppMetrics is valid; all Record helpers become no-ops.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Upstream registries
	UpstreamRequestsTotal   CounterVec
	UpstreamRequestDuration HistogramVec
	UpstreamRetriesTotal    CounterVec
	LimiterWaitDuration     HistogramVec

	// Family traversal
	FamilyTraversalDuration HistogramVec
	FamilyTreeSize          HistogramVec
	FamilyNodesTotal        CounterVec

	// Orchestration
	LookupsTotal         CounterVec
	LookupDuration       HistogramVec
	ProceedingsResolved  HistogramVec
	EventsPublishedTotal CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets     = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultUpstreamDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30}
	DefaultTraversalBuckets        = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultCountBuckets            = []float64{0, 1, 2, 5, 10, 20, 40, 100, 500, 1000}
)

// NewAppMetrics registers all metrics against collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "route")

	m.UpstreamRequestsTotal = collector.RegisterCounter("upstream_requests_total", "Registry calls by outcome", "registry", "endpoint", "outcome")
	m.UpstreamRequestDuration = collector.RegisterHistogram("upstream_request_duration_seconds", "Registry call latency", DefaultUpstreamDurationBuckets, "registry", "endpoint")
	m.UpstreamRetriesTotal = collector.RegisterCounter("upstream_retries_total", "Registry call retries", "registry", "reason")
	m.LimiterWaitDuration = collector.RegisterHistogram("limiter_wait_seconds", "Time spent waiting on the outbound limiter", DefaultUpstreamDurationBuckets, "backend")

	m.FamilyTraversalDuration = collector.RegisterHistogram("family_traversal_duration_seconds", "Family tree build duration", DefaultTraversalBuckets, "result")
	m.FamilyTreeSize = collector.RegisterHistogram("family_tree_size", "Nodes visited per family build", DefaultCountBuckets)
	m.FamilyNodesTotal = collector.RegisterCounter("family_nodes_total", "Family nodes by outcome", "outcome")

	m.LookupsTotal = collector.RegisterCounter("lookups_total", "Orchestrated lookups", "kind", "result")
	m.LookupDuration = collector.RegisterHistogram("lookup_duration_seconds", "Orchestrated lookup duration", DefaultTraversalBuckets, "kind")
	m.ProceedingsResolved = collector.RegisterHistogram("proceedings_resolved", "Proceedings returned per resolution", DefaultCountBuckets, "mode")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Lookup events published", "topic", "status")

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Record helpers
// ─────────────────────────────────────────────────────────────────────────────

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(m *AppMetrics, method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstreamCall records one registry HTTP attempt.  outcome is a short
// classification such as "ok", "not_found", "throttled" or "error".
func RecordUpstreamCall(m *AppMetrics, registry, endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(registry, endpoint, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(registry, endpoint).Observe(duration.Seconds())
}

// RecordRetry records one backoff-and-retry decision.
func RecordRetry(m *AppMetrics, registry, reason string) {
	if m == nil {
		return
	}
	m.UpstreamRetriesTotal.WithLabelValues(registry, reason).Inc()
}

// RecordLimiterWait records time spent blocked on the outbound limiter.
func RecordLimiterWait(m *AppMetrics, backend string, waited time.Duration) {
	if m == nil {
		return
	}
	m.LimiterWaitDuration.WithLabelValues(backend).Observe(waited.Seconds())
}

// RecordTraversal records a completed family build.
func RecordTraversal(m *AppMetrics, nodes int, outcomes map[string]int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FamilyTraversalDuration.WithLabelValues(result).Observe(duration.Seconds())
	m.FamilyTreeSize.WithLabelValues().Observe(float64(nodes))
	for outcome, n := range outcomes {
		m.FamilyNodesTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordProceedings records the size of one proceedings resolution.
func RecordProceedings(m *AppMetrics, exhaustive bool, count int) {
	if m == nil {
		return
	}
	mode := "first_hit"
	if exhaustive {
		mode = "exhaustive"
	}
	m.ProceedingsResolved.WithLabelValues(mode).Observe(float64(count))
}

// RecordLookup records one orchestrated lookup.
func RecordLookup(m *AppMetrics, kind, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(kind, result).Inc()
	m.LookupDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordEventPublish records one lookup event publication attempt.
func RecordEventPublish(m *AppMetrics, topic string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}

//Personal.AI order the ending
