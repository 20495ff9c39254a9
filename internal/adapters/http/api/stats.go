package api

import (
	"net/http"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatusProvider exposes the repository connectivity view.
type StatusProvider interface {
	Status() service.Status
}

// MonitorHandler serves metrics, stats and connectivity.
type MonitorHandler struct {
	stats  StatsProvider
	status StatusProvider
	prom   http.Handler
}

// NewMonitorHandler creates a new monitoring handler.
func NewMonitorHandler(stats StatsProvider, status StatusProvider) *MonitorHandler {
	return &MonitorHandler{
		stats:  stats,
		status: status,
		prom:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz with the Prometheus exposition.
func (h *MonitorHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.prom.ServeHTTP(w, r)
}

// HandleStats handles GET /stats requests.
func (h *MonitorHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}

// HandleStatus handles GET /status. Connectivity is informational only.
func (h *MonitorHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.status.Status())
}
