package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/todoapi/todoapi/internal/metrics"
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

	writeMetric(w, "todoapi_todos_created_total %d\n", snap.TodosCreated)
	writeMetric(w, "todoapi_todos_updated_total %d\n", snap.TodosUpdated)
	writeMetric(w, "todoapi_todos_deleted_total %d\n", snap.TodosDeleted)

	writeMetric(w, "todoapi_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "todoapi_logins_total{status=\"%s\"} %d\n", metrics.LoginSuccess, snap.LoginsSucceeded)
	writeMetric(w, "todoapi_logins_total{status=\"%s\"} %d\n", metrics.LoginFailed, snap.LoginsFailed)
	writeMetric(w, "todoapi_logouts_total %d\n", snap.Logouts)

	reasons := make([]string, 0, len(snap.AuthRejected))
	for reason := range snap.AuthRejected {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		writeMetric(w, "todoapi_auth_rejected_total{reason=\"%s\"} %d\n", reason, snap.AuthRejected[reason])
	}

	writeMetric(w, "todoapi_password_hash_duration_seconds_count %d\n", snap.HashDurationCount)
	writeMetric(w, "todoapi_password_hash_duration_seconds_sum %.6f\n", float64(snap.HashDurationTotalNs)/1e9)

	writeMetric(w, "todoapi_session_cache_hits_total %d\n", snap.SessionCacheHits)
	writeMetric(w, "todoapi_session_cache_misses_total %d\n", snap.SessionCacheMisses)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
