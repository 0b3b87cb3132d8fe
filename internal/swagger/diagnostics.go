package swagger

import "github.com/antonio-alexander/go-employees/internal/data"

// swagger:route DELETE /cache Diagnostics ClearCache
// Removes every employee from the service side cache.
//
// responses:
//   204: NoContent

// swagger:route GET /cache/counters Diagnostics ReadCacheCounters
// Reads the cache hits and misses per operation.
//
//     Produces:
//     - application/json
//
// responses:
//   200: CacheCountersResponseOk

// swagger:route DELETE /cache/counters Diagnostics ClearCacheCounters
// Resets the cache hits and misses.
//
// responses:
//   204: NoContent

// swagger:route GET /timers Diagnostics ReadTimers
// Reads the total and average time (in nanoseconds) spent per endpoint,
// only populated when SERVICE_TIMERS_ENABLED is set.
//
//     Produces:
//     - application/json
//
// responses:
//   200: TimersResponseOk

// swagger:route DELETE /timers Diagnostics ClearTimers
// Resets the endpoint timers.
//
// responses:
//   204: NoContent

// swagger:response NoContent
type NoContent struct{}

// swagger:response CacheCountersResponseOk
type CacheCountersResponseOk struct {
	// in:body
	CacheCounters data.CacheCounters
}

// swagger:response TimersResponseOk
type TimersResponseOk struct {
	// in:body
	Timers data.Timers
}

// swagger:parameters ClearCache ReadCacheCounters ClearCacheCounters ReadTimers ClearTimers
type DiagnosticsParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
