package prometheus

import (
	"strconv"
	"time"
)

// Label values shared by callers.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// AnalysisMetrics holds every metric ClauseWise records.
type AnalysisMetrics struct {
	RequestsTotal      CounterVec   // operation, source
	Duration           HistogramVec // operation
	FallbacksTotal     CounterVec   // operation, collaborator, reason
	RemoteCallDuration HistogramVec // collaborator, operation, status
	ClausesPerDocument HistogramVec

	HTTPRequestsTotal   CounterVec   // method, path, status
	HTTPRequestDuration HistogramVec // method, path

	CacheRequestsTotal CounterVec // cache, result
	JobsProcessedTotal CounterVec // status
}

var (
	AnalysisDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30, 60}
	RemoteDurationBuckets   = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	HTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	ClauseCountBuckets      = []float64{0, 1, 2, 5, 10, 15, 20, 50, 100}
)

// NewAnalysisMetrics registers the metric set on collector.
func NewAnalysisMetrics(c MetricsCollector) *AnalysisMetrics {
	return &AnalysisMetrics{
		RequestsTotal:      c.RegisterCounter("analysis_requests_total", "Analysis operations by result source", "operation", "source"),
		Duration:           c.RegisterHistogram("analysis_duration_seconds", "Analysis operation duration", AnalysisDurationBuckets, "operation"),
		FallbacksTotal:     c.RegisterCounter("analysis_fallbacks_total", "Remote results replaced by local ones", "operation", "collaborator", "reason"),
		RemoteCallDuration: c.RegisterHistogram("remote_call_duration_seconds", "Remote collaborator call duration", RemoteDurationBuckets, "collaborator", "operation", "status"),
		ClausesPerDocument: c.RegisterHistogram("clauses_per_document", "Clauses segmented per analyzed document", ClauseCountBuckets),

		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", HTTPDurationBuckets, "method", "path"),

		CacheRequestsTotal: c.RegisterCounter("cache_requests_total", "Report cache lookups", "cache", "result"),
		JobsProcessedTotal: c.RegisterCounter("jobs_processed_total", "Asynchronous analysis jobs", "status"),
	}
}

// NewNoopMetrics returns metrics backed by the no-op collector.
func NewNoopMetrics() *AnalysisMetrics { return NewAnalysisMetrics(NewNoopCollector()) }

func (m *AnalysisMetrics) RecordOperation(operation, source string, d time.Duration) {
	m.RequestsTotal.WithLabelValues(operation, source).Inc()
	m.Duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *AnalysisMetrics) RecordFallback(operation, collaborator, reason string) {
	m.FallbacksTotal.WithLabelValues(operation, collaborator, reason).Inc()
}

func (m *AnalysisMetrics) RecordRemoteCall(collaborator, operation string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.RemoteCallDuration.WithLabelValues(collaborator, operation, status).Observe(d.Seconds())
}

func (m *AnalysisMetrics) RecordClauses(n int) {
	m.ClausesPerDocument.WithLabelValues().Observe(float64(n))
}

func (m *AnalysisMetrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *AnalysisMetrics) RecordCacheAccess(cache string, hit bool) {
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.CacheRequestsTotal.WithLabelValues(cache, result).Inc()
}

func (m *AnalysisMetrics) RecordJob(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.JobsProcessedTotal.WithLabelValues(status).Inc()
}

//Personal.AI order the ending
