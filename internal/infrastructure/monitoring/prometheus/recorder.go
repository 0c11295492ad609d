package prometheus

import (
	"strconv"

	"github.com/turtacn/DrugRx-Intelligence/internal/application/assistant"
)

// Recorder adapts the exported metrics and the rolling runtime stats to the
// pipeline's per-request observation contract.  It also implements the lookup
// cache observer so cache traffic lands on the same metric set.
type Recorder struct {
	metrics    *AppMetrics
	stats      *RuntimeStats
	cacheSizes func() map[string]int
}

// NewRecorder builds a recorder over the given metric set and stats tracker.
func NewRecorder(metrics *AppMetrics, stats *RuntimeStats) *Recorder {
	return &Recorder{metrics: metrics, stats: stats}
}

// SetCacheSizes attaches a provider of per-map cache entry counts; the entry
// gauges are refreshed from it after every observed request.
func (r *Recorder) SetCacheSizes(fn func() map[string]int) {
	r.cacheSizes = fn
}

// RecordCacheLookup records one lookup cache hit or miss.
func (r *Recorder) RecordCacheLookup(cache string, hit bool) {
	if hit {
		r.metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		r.metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
	if r.stats != nil {
		r.stats.RecordCache(hit)
	}
}

// ObserveRequest records one completed pipeline request.
func (r *Recorder) ObserveRequest(obs assistant.RequestObservation) {
	succeeded := obs.LLMAttempted == 0 || obs.LLMSuccessful > 0

	status := "ok"
	if obs.Degraded {
		status = "degraded"
	} else if !succeeded {
		status = "error"
	}

	r.metrics.ChatRequestsTotal.WithLabelValues(status).Inc()
	r.metrics.ChatRequestDuration.WithLabelValues(status).Observe(obs.ResponseTime.Seconds())
	r.metrics.InteractionsFound.WithLabelValues("db").Observe(float64(obs.InteractionsFoundDB))
	r.metrics.InteractionsFound.WithLabelValues("llm").Observe(float64(obs.InteractionsFoundLLM))
	r.metrics.ResponseEmotions.WithLabelValues(string(obs.Emotion)).Inc()

	if obs.DBAttempted > 0 {
		r.metrics.StoreLookupsTotal.WithLabelValues("pipeline", strconv.FormatBool(obs.DBSuccessful > 0)).Inc()
	}
	if obs.LLMAttempted > 0 {
		r.metrics.LLMCallsTotal.WithLabelValues("pipeline", strconv.FormatBool(obs.LLMSuccessful > 0)).Add(float64(obs.LLMAttempted))
	}
	if obs.Degraded {
		reason := "connectivity"
		if obs.RateLimited {
			reason = "rate_limit"
		}
		r.metrics.DegradedResponses.WithLabelValues(reason).Inc()
	}

	if r.cacheSizes != nil {
		for name, count := range r.cacheSizes() {
			r.metrics.CacheEntries.WithLabelValues(name).Set(float64(count))
		}
	}

	if r.stats != nil {
		r.stats.RecordRequest(obs.ResponseTime, succeeded && !obs.Degraded, obs.Degraded)
		if obs.DBAttempted > 0 {
			r.stats.RecordStoreLookup(obs.DBSuccessful == 0)
		}
		if obs.LLMAttempted > 0 {
			r.stats.RecordLLMCall(obs.LLMSuccessful == 0, obs.RateLimited)
		}
	}
}
