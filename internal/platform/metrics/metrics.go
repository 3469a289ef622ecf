package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts requests and store degradations. A nil *Collector is
// valid and records nothing.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	clientErrors    uint64
	totalDurationMs uint64
	remoteFailures  uint64
	fallbacks       uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	} else if status >= 400 {
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordRemoteFailure counts a failed call to the remote store.
func (c *Collector) RecordRemoteFailure() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.remoteFailures, 1)
}

// RecordFallback counts a switch to, or start in, offline mode.
func (c *Collector) RecordFallback() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.fallbacks, 1)
}

func (c *Collector) Snapshot() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	clientErrs := atomic.LoadUint64(&c.clientErrors)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           errs,
		"clientErrorsTotal":     clientErrs,
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"remoteFailuresTotal":   atomic.LoadUint64(&c.remoteFailures),
		"offlineFallbacksTotal": atomic.LoadUint64(&c.fallbacks),
	}
}
