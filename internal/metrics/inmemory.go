package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	IdentityCacheHits        uint64
	IdentityCacheMisses      uint64
	TokenVerifyCount         uint64
	TokenVerifyTotalNs       int64
	AuthFailures             uint64
	UsersRegistered          map[string]uint64
	JobsCreated              uint64
	JobsUpdated              uint64
	JobsDeleted              uint64
	JobCacheHits             uint64
	JobCacheMisses           uint64
	ApplicationsCreated      uint64
	ApplicationConflicts     uint64
	ApplicationStatusChanges map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics endpoint.
type InMemoryRecorder struct {
	identityCacheHits    uint64
	identityCacheMisses  uint64
	tokenVerifyCount     uint64
	tokenVerifyTotalNs   int64
	authFailures         uint64
	jobsCreated          uint64
	jobsUpdated          uint64
	jobsDeleted          uint64
	jobCacheHits         uint64
	jobCacheMisses       uint64
	applicationsCreated  uint64
	applicationConflicts uint64

	mu              sync.Mutex
	usersRegistered map[string]uint64
	statusChanges   map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		usersRegistered: make(map[string]uint64),
		statusChanges:   make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	registered := make(map[string]uint64, len(m.usersRegistered))
	for k, v := range m.usersRegistered {
		registered[k] = v
	}
	changes := make(map[string]uint64, len(m.statusChanges))
	for k, v := range m.statusChanges {
		changes[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		IdentityCacheHits:        atomic.LoadUint64(&m.identityCacheHits),
		IdentityCacheMisses:      atomic.LoadUint64(&m.identityCacheMisses),
		TokenVerifyCount:         atomic.LoadUint64(&m.tokenVerifyCount),
		TokenVerifyTotalNs:       atomic.LoadInt64(&m.tokenVerifyTotalNs),
		AuthFailures:             atomic.LoadUint64(&m.authFailures),
		UsersRegistered:          registered,
		JobsCreated:              atomic.LoadUint64(&m.jobsCreated),
		JobsUpdated:              atomic.LoadUint64(&m.jobsUpdated),
		JobsDeleted:              atomic.LoadUint64(&m.jobsDeleted),
		JobCacheHits:             atomic.LoadUint64(&m.jobCacheHits),
		JobCacheMisses:           atomic.LoadUint64(&m.jobCacheMisses),
		ApplicationsCreated:      atomic.LoadUint64(&m.applicationsCreated),
		ApplicationConflicts:     atomic.LoadUint64(&m.applicationConflicts),
		ApplicationStatusChanges: changes,
	}
}

// IncIdentityCacheHit increments identity cache hit counter.
func (m *InMemoryRecorder) IncIdentityCacheHit() {
	atomic.AddUint64(&m.identityCacheHits, 1)
}

// IncIdentityCacheMiss increments identity cache miss counter.
func (m *InMemoryRecorder) IncIdentityCacheMiss() {
	atomic.AddUint64(&m.identityCacheMisses, 1)
}

// ObserveTokenVerifyDuration records how long a signature verification took.
func (m *InMemoryRecorder) ObserveTokenVerifyDuration(duration time.Duration) {
	atomic.AddUint64(&m.tokenVerifyCount, 1)
	atomic.AddInt64(&m.tokenVerifyTotalNs, duration.Nanoseconds())
}

// IncAuthFailure increments rejected token counter.
func (m *InMemoryRecorder) IncAuthFailure() {
	atomic.AddUint64(&m.authFailures, 1)
}

// IncUserRegistered increments registrations for role.
func (m *InMemoryRecorder) IncUserRegistered(role string) {
	m.mu.Lock()
	m.usersRegistered[role]++
	m.mu.Unlock()
}

// IncJobCreated increments job created counter.
func (m *InMemoryRecorder) IncJobCreated() {
	atomic.AddUint64(&m.jobsCreated, 1)
}

// IncJobUpdated increments job updated counter.
func (m *InMemoryRecorder) IncJobUpdated() {
	atomic.AddUint64(&m.jobsUpdated, 1)
}

// IncJobDeleted increments job deleted counter.
func (m *InMemoryRecorder) IncJobDeleted() {
	atomic.AddUint64(&m.jobsDeleted, 1)
}

// IncJobCacheHit increments job cache hit counter.
func (m *InMemoryRecorder) IncJobCacheHit() {
	atomic.AddUint64(&m.jobCacheHits, 1)
}

// IncJobCacheMiss increments job cache miss counter.
func (m *InMemoryRecorder) IncJobCacheMiss() {
	atomic.AddUint64(&m.jobCacheMisses, 1)
}

// IncApplicationCreated increments application created counter.
func (m *InMemoryRecorder) IncApplicationCreated() {
	atomic.AddUint64(&m.applicationsCreated, 1)
}

// IncApplicationConflict increments duplicate application counter.
func (m *InMemoryRecorder) IncApplicationConflict() {
	atomic.AddUint64(&m.applicationConflicts, 1)
}

// IncApplicationStatusChanged increments status changes for the new status.
func (m *InMemoryRecorder) IncApplicationStatusChanged(status string) {
	m.mu.Lock()
	m.statusChanges[status]++
	m.mu.Unlock()
}
