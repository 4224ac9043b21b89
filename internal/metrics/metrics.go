// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity metrics
	IncIdentityCacheHit()
	IncIdentityCacheMiss()
	ObserveTokenVerifyDuration(duration time.Duration)
	IncAuthFailure()

	// Registration metrics
	IncUserRegistered(role string)

	// Job catalog metrics
	IncJobCreated()
	IncJobUpdated()
	IncJobDeleted()
	IncJobCacheHit()
	IncJobCacheMiss()

	// Application ledger metrics
	IncApplicationCreated()
	IncApplicationConflict()
	IncApplicationStatusChanged(status string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
