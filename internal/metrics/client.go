package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backend client Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdesk",
			Name:      "backend_requests_total",
			Help:      "Total number of requests sent to the query backend",
		},
		[]string{"endpoint", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdesk",
			Name:      "backend_request_duration_seconds",
			Help:      "Time until the backend response headers arrive, in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	StreamBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ragdesk",
			Name:      "stream_bytes_total",
			Help:      "Total bytes of streamed query responses received",
		},
	)

	StreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragdesk",
			Name:      "stream_duration_seconds",
			Help:      "Duration of a streamed query response from first byte to end, in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	StatusPollFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ragdesk",
			Name:      "status_poll_failures_total",
			Help:      "Total status polls that failed and were swallowed",
		},
	)

	BackendBusy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ragdesk",
			Name:      "backend_busy",
			Help:      "1 when the last status poll reported an active query",
		},
	)
)

var clientMetricsRegistered bool

// RegisterClientMetrics registers the backend client metrics. Must be called once from main.
func RegisterClientMetrics() {
	if clientMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(StreamBytesTotal)
	prometheus.MustRegister(StreamDuration)
	prometheus.MustRegister(StatusPollFailuresTotal)
	prometheus.MustRegister(BackendBusy)
	clientMetricsRegistered = true
}
