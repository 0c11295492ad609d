package prometheus

import (
	"sync"
	"time"
)

// AppMetrics holds the assistant's metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Pipeline layer
	ChatRequestsTotal   CounterVec
	ChatRequestDuration HistogramVec
	InteractionsFound   HistogramVec
	DegradedResponses   CounterVec
	ResponseEmotions    CounterVec

	// Knowledge store layer
	StoreLookupsTotal CounterVec

	// Language service layer
	LLMCallsTotal CounterVec

	// Lookup cache layer
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheEntries     GaugeVec
}

var (
	defaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	defaultLLMDurationBuckets  = []float64{.25, .5, 1, 2, 5, 10, 30, 60}
)

// NewAppMetrics registers all assistant metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", defaultHTTPDurationBuckets, "method", "path")

	m.ChatRequestsTotal = collector.RegisterCounter("chat_requests_total", "Chat pipeline requests", "status")
	m.ChatRequestDuration = collector.RegisterHistogram("chat_request_duration_seconds", "End-to-end chat pipeline duration", defaultLLMDurationBuckets, "status")
	m.InteractionsFound = collector.RegisterHistogram("interactions_found", "Interactions found per request", []float64{0, 1, 2, 3, 5, 10, 20}, "source")
	m.DegradedResponses = collector.RegisterCounter("degraded_responses_total", "Responses produced in degraded mode", "reason")
	m.ResponseEmotions = collector.RegisterCounter("response_emotions_total", "Emotion tags on responses", "emotion")

	m.StoreLookupsTotal = collector.RegisterCounter("store_lookups_total", "Knowledge store lookups", "operation", "status")

	m.LLMCallsTotal = collector.RegisterCounter("llm_calls_total", "Language service calls", "kind", "status")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Lookup cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Lookup cache misses", "cache")
	m.CacheEntries = collector.RegisterGauge("cache_entries", "Lookup cache entry count", "cache")

	return m
}

// ---------------------------------------------------------------------------
// Runtime stats
// ---------------------------------------------------------------------------

const (
	responseTimeWindow = 100
	requestRateWindow  = time.Minute
)

// Snapshot is a point-in-time view of the rolling runtime stats.
type Snapshot struct {
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	FailedRequests     int64   `json:"failed_requests"`
	DegradedRequests   int64   `json:"degraded_requests"`
	AvgResponseSeconds float64 `json:"avg_response_seconds"`
	RequestsPerMinute  int     `json:"requests_per_minute"`
	DBLookups          int64   `json:"db_lookups"`
	DBLookupFailures   int64   `json:"db_lookup_failures"`
	LLMCalls           int64   `json:"llm_calls"`
	LLMFailures        int64   `json:"llm_failures"`
	LLMRateLimited     int64   `json:"llm_rate_limited"`
	CacheHits          int64   `json:"cache_hits"`
	CacheMisses        int64   `json:"cache_misses"`
}

// RuntimeStats keeps process-local rolling statistics alongside the exported
// metrics: a bounded window of recent response times and a one-minute request
// timestamp window.  Everything resets with the process.
type RuntimeStats struct {
	mu sync.Mutex

	responseTimes []float64
	timestamps    []time.Time

	total     int64
	succeeded int64
	failed    int64
	degraded  int64

	dbLookups   int64
	dbFailures  int64
	llmCalls    int64
	llmFailures int64
	rateLimited int64
	cacheHits   int64
	cacheMisses int64
}

func NewRuntimeStats() *RuntimeStats {
	return &RuntimeStats{}
}

// RecordRequest records one finished pipeline request.
func (s *RuntimeStats) RecordRequest(duration time.Duration, succeeded, degraded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.total++
	if succeeded {
		s.succeeded++
	} else {
		s.failed++
	}
	if degraded {
		s.degraded++
	}

	s.responseTimes = append(s.responseTimes, duration.Seconds())
	if len(s.responseTimes) > responseTimeWindow {
		s.responseTimes = s.responseTimes[len(s.responseTimes)-responseTimeWindow:]
	}

	s.timestamps = append(s.timestamps, now)
	s.pruneLocked(now)
}

func (s *RuntimeStats) RecordStoreLookup(failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbLookups++
	if failed {
		s.dbFailures++
	}
}

func (s *RuntimeStats) RecordLLMCall(failed, rateLimited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llmCalls++
	if failed {
		s.llmFailures++
	}
	if rateLimited {
		s.rateLimited++
	}
}

func (s *RuntimeStats) RecordCache(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hit {
		s.cacheHits++
	} else {
		s.cacheMisses++
	}
}

func (s *RuntimeStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-requestRateWindow)
	idx := 0
	for idx < len(s.timestamps) && s.timestamps[idx].Before(cutoff) {
		idx++
	}
	s.timestamps = s.timestamps[idx:]
}

// Stats returns the current snapshot.
func (s *RuntimeStats) Stats() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(time.Now())

	var avg float64
	if len(s.responseTimes) > 0 {
		var sum float64
		for _, rt := range s.responseTimes {
			sum += rt
		}
		avg = sum / float64(len(s.responseTimes))
	}

	return Snapshot{
		TotalRequests:      s.total,
		SuccessfulRequests: s.succeeded,
		FailedRequests:     s.failed,
		DegradedRequests:   s.degraded,
		AvgResponseSeconds: avg,
		RequestsPerMinute:  len(s.timestamps),
		DBLookups:          s.dbLookups,
		DBLookupFailures:   s.dbFailures,
		LLMCalls:           s.llmCalls,
		LLMFailures:        s.llmFailures,
		LLMRateLimited:     s.rateLimited,
		CacheHits:          s.cacheHits,
		CacheMisses:        s.cacheMisses,
	}
}
