package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/hookstash/hookstash/internal/metrics"
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

	writeMetric(w, "hookstash_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "hookstash_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "hookstash_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)
	writeMetric(w, "hookstash_token_refreshes_total{status=\"success\"} %d\n", snap.TokensRefreshed)
	writeMetric(w, "hookstash_token_refreshes_total{status=\"rejected\"} %d\n", snap.TokenRefreshRejected)
	writeMetric(w, "hookstash_webhooks_ingested_total %d\n", snap.WebhooksIngested)

	// Stable output order for the per-source series.
	sources := make([]string, 0, len(snap.WebhooksBySource))
	for source := range snap.WebhooksBySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		writeMetric(w, "hookstash_webhooks_ingested_by_source_total{source=%q} %d\n", source, snap.WebhooksBySource[source])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
