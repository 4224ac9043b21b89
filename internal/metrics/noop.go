package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncIdentityCacheHit is a no-op.
func (n *NoopRecorder) IncIdentityCacheHit() {}

// IncIdentityCacheMiss is a no-op.
func (n *NoopRecorder) IncIdentityCacheMiss() {}

// ObserveTokenVerifyDuration is a no-op.
func (n *NoopRecorder) ObserveTokenVerifyDuration(duration time.Duration) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure() {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered(role string) {}

// IncJobCreated is a no-op.
func (n *NoopRecorder) IncJobCreated() {}

// IncJobUpdated is a no-op.
func (n *NoopRecorder) IncJobUpdated() {}

// IncJobDeleted is a no-op.
func (n *NoopRecorder) IncJobDeleted() {}

// IncJobCacheHit is a no-op.
func (n *NoopRecorder) IncJobCacheHit() {}

// IncJobCacheMiss is a no-op.
func (n *NoopRecorder) IncJobCacheMiss() {}

// IncApplicationCreated is a no-op.
func (n *NoopRecorder) IncApplicationCreated() {}

// IncApplicationConflict is a no-op.
func (n *NoopRecorder) IncApplicationConflict() {}

// IncApplicationStatusChanged is a no-op.
func (n *NoopRecorder) IncApplicationStatusChanged(status string) {}
