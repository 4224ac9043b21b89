package handler

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/campusjobs/campusjobs/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "campusjobs_identity_cache_hits_total %d\n", snap.IdentityCacheHits)
	writeMetric(w, "campusjobs_identity_cache_misses_total %d\n", snap.IdentityCacheMisses)
	writeMetric(w, "campusjobs_token_verify_duration_seconds_count %d\n", snap.TokenVerifyCount)
	writeMetric(w, "campusjobs_token_verify_duration_seconds_sum %.6f\n", float64(snap.TokenVerifyTotalNs)/1e9)
	writeMetric(w, "campusjobs_auth_failures_total %d\n", snap.AuthFailures)

	for _, role := range sortedKeys(snap.UsersRegistered) {
		writeMetric(w, "campusjobs_users_registered_total{role=%q} %d\n", role, snap.UsersRegistered[role])
	}

	writeMetric(w, "campusjobs_jobs_created_total %d\n", snap.JobsCreated)
	writeMetric(w, "campusjobs_jobs_updated_total %d\n", snap.JobsUpdated)
	writeMetric(w, "campusjobs_jobs_deleted_total %d\n", snap.JobsDeleted)
	writeMetric(w, "campusjobs_job_cache_hits_total %d\n", snap.JobCacheHits)
	writeMetric(w, "campusjobs_job_cache_misses_total %d\n", snap.JobCacheMisses)

	writeMetric(w, "campusjobs_applications_created_total %d\n", snap.ApplicationsCreated)
	writeMetric(w, "campusjobs_application_conflicts_total %d\n", snap.ApplicationConflicts)
	for _, status := range sortedKeys(snap.ApplicationStatusChanges) {
		writeMetric(w, "campusjobs_application_status_changes_total{status=%q} %d\n", status, snap.ApplicationStatusChanges[status])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
