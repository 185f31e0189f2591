package metrics

import (
	"sync"
	"time"
)

type queryStats struct {
	calls           int
	errors          int
	throttles       int
	lastThrottle    time.Duration
	lastCallLatency time.Duration
}

type aggregationStats struct {
	calls        int
	failures     int
	lastDuration time.Duration
	lastSize     int
}

// Recorder captures lightweight, in-memory metrics about store queries and feed aggregation,
// mirrored into OpenTelemetry instruments when telemetry is enabled.
type Recorder struct {
	mu           sync.Mutex
	queries      map[string]*queryStats
	aggregations map[string]*aggregationStats
	cacheHits    int
	cacheMisses  int
	reloads      int
	otel         *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		queries:      make(map[string]*queryStats),
		aggregations: make(map[string]*aggregationStats),
		otel:         otel,
	}
}

// RecordStoreQuery counts one store round-trip for a status group and keeps its latency.
func (r *Recorder) RecordStoreQuery(group string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureQueryStats(group)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordStoreQuery(group, duration, err)
	}
}

// RecordThrottle tracks that a store call waited on the rate limiter.
func (r *Recorder) RecordThrottle(group string, wait time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureQueryStats(group)
	stats.throttles++
	if wait > 0 {
		stats.lastThrottle = wait
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordThrottle(group, wait)
	}
}

// RecordAggregation tracks elapsed time and merged size of one feed aggregation.
func (r *Recorder) RecordAggregation(strategy string, duration time.Duration, size int, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.aggregations[strategy]
	if !ok {
		stats = &aggregationStats{}
		r.aggregations[strategy] = stats
	}
	stats.calls++
	stats.lastDuration = duration
	if err != nil {
		stats.failures++
	} else {
		stats.lastSize = size
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordAggregation(strategy, duration, size, err)
	}
}

// RecordCacheLookup tracks feed cache hits and misses.
func (r *Recorder) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if hit {
		r.cacheHits++
	} else {
		r.cacheMisses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCache(hit)
	}
}

// RecordSettingsReload tracks hot reloads of the feed settings file.
func (r *Recorder) RecordSettingsReload(err error) {
	if r == nil {
		return
	}
	if err == nil {
		r.mu.Lock()
		r.reloads++
		r.mu.Unlock()
	}
	if r.otel != nil {
		r.otel.recordReload(err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// QuerySnapshot is a copy of the store query stats for one group.
type QuerySnapshot struct {
	Calls           int
	Errors          int
	Throttles       int
	LastThrottle    time.Duration
	LastCallLatency time.Duration
}

// AggregationSnapshot is a copy of the aggregation stats for one strategy.
type AggregationSnapshot struct {
	Calls        int
	Failures     int
	LastDuration time.Duration
	LastSize     int
}

func (r *Recorder) QuerySnapshot(group string) QuerySnapshot {
	if r == nil {
		return QuerySnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.queries[group]
	if !ok {
		return QuerySnapshot{}
	}
	return QuerySnapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		Throttles:       stats.throttles,
		LastThrottle:    stats.lastThrottle,
		LastCallLatency: stats.lastCallLatency,
	}
}

func (r *Recorder) AggregationSnapshot(strategy string) AggregationSnapshot {
	if r == nil {
		return AggregationSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.aggregations[strategy]
	if !ok {
		return AggregationSnapshot{}
	}
	return AggregationSnapshot{
		Calls:        stats.calls,
		Failures:     stats.failures,
		LastDuration: stats.lastDuration,
		LastSize:     stats.lastSize,
	}
}

// CacheStats returns the hit and miss counts.
func (r *Recorder) CacheStats() (hits, misses int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cacheHits, r.cacheMisses
}

// SettingsReloads returns the number of successful settings reloads.
func (r *Recorder) SettingsReloads() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloads
}

// ensureQueryStats must be called with r.mu held.
func (r *Recorder) ensureQueryStats(group string) *queryStats {
	stats, ok := r.queries[group]
	if !ok {
		stats = &queryStats{}
		r.queries[group] = stats
	}
	return stats
}
