package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Ops instruments the ops listener (/metrics, /health).
type Ops struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewOps creates the ops listener collectors and registers them on reg.
// Collectors already present on reg are reused.
func NewOps(reg prometheus.Registerer) (*Ops, error) {
	o := &Ops{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ragdesk",
			Subsystem: "ops",
			Name:      "http_request_duration_seconds",
			Help:      "Ops listener request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "path", "status"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ragdesk",
			Subsystem: "ops",
			Name:      "http_requests_total",
			Help:      "Total number of ops listener requests",
		}, []string{"method", "path", "status"}),
	}
	if err := registerOrReuse(reg, &o.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &o.total); err != nil {
		return nil, err
	}
	return o, nil
}

// Middleware records request duration and count per chi route pattern.
func (o *Ops) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			code := strconv.Itoa(status)

			path := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				path = rctx.RoutePattern()
			}
			path = normalizePath(path)

			o.duration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
			o.total.WithLabelValues(r.Method, path, code).Inc()
		})
	}
}

// normalizePath keeps label cardinality bounded: unmatched routes share one label.
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}
