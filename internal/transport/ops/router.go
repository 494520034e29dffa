// Package ops serves the client's operational endpoints: Prometheus
// metrics and a liveness probe.
package ops

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdesk/internal/metrics"
	"github.com/kailas-cloud/ragdesk/internal/version"
)

// StatusReader exposes the client's current view of the backend.
type StatusReader interface {
	SubmitEnabled() bool
}

// RouterConfig holds the ops router dependencies.
type RouterConfig struct {
	Logger   *zap.Logger
	Ops      *metrics.Ops
	Gatherer prometheus.Gatherer
	APIKeys  []string
	Status   StatusReader // optional
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Build         string `json:"build"`
	SubmitEnabled *bool  `json:"submit_enabled,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRouter builds the ops HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	if cfg.Ops != nil {
		r.Use(cfg.Ops.Middleware())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status:  "ok",
			Version: version.Version,
			Commit:  version.Commit,
			Build:   version.String(),
		}
		if cfg.Status != nil {
			enabled := cfg.Status.SubmitEnabled()
			resp.SubmitEnabled = &enabled
		}
		writeJSON(w, http.StatusOK, resp)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "not found")
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
