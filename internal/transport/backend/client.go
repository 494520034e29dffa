// Package backend is the HTTP transport to the query backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdesk/internal/domain"
	logpkg "github.com/kailas-cloud/ragdesk/internal/logger"
	"github.com/kailas-cloud/ragdesk/internal/metrics"
)

// Backend endpoints.
const (
	EndpointQuery  = "/query"
	EndpointStatus = "/query_status"
	EndpointUpload = "/upload_pdf"
)

// maxErrorBody caps how much of an error reply is read.
const maxErrorBody = 64 << 10

// Client talks to the query backend over HTTP.
type Client struct {
	baseURL       string
	http          *http.Client
	statusTimeout time.Duration
	logger        *zap.Logger
}

// Config holds the backend transport settings.
type Config struct {
	BaseURL string
	// HTTPClient defaults to a client without a timeout; queries and
	// uploads run until the transport ends them.
	HTTPClient *http.Client
	// StatusTimeout bounds a single status poll. Zero means no bound.
	StatusTimeout time.Duration
	Logger        *zap.Logger
}

// NewClient creates a backend client.
func NewClient(cfg *Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		http:          hc,
		statusTimeout: cfg.StatusTimeout,
		logger:        logger,
	}, nil
}

// Query posts the query text and returns the streamed reply body.
// The caller must close it. A non-2xx reply yields *domain.APIError.
func (c *Client) Query(ctx context.Context, text string) (io.ReadCloser, error) {
	payload, err := json.Marshal(domain.QueryRequest{QueryText: text})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointQuery, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, log, err := c.do(ctx, EndpointQuery, req)
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		detail := readDetail(resp.Body)
		log.Warn("query rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail),
		)
		return nil, domain.NewAPIError(resp.StatusCode, detail)
	}

	return newMeteredBody(resp.Body, log), nil
}

// Status fetches the backend's active-query flag.
func (c *Client) Status(ctx context.Context) (domain.QueryStatus, error) {
	if c.statusTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.statusTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+EndpointStatus, http.NoBody)
	if err != nil {
		return domain.QueryStatus{}, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, _, err := c.do(ctx, EndpointStatus, req)
	if err != nil {
		return domain.QueryStatus{}, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return domain.QueryStatus{}, domain.NewAPIError(resp.StatusCode, readDetail(resp.Body))
	}

	var status domain.QueryStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return domain.QueryStatus{}, fmt.Errorf("decode status: %w: %w", domain.ErrMalformedResponse, err)
	}
	return status, nil
}

// do sends req with a fresh request ID and records transport metrics.
// It returns the request-scoped logger alongside the response.
func (c *Client) do(ctx context.Context, endpoint string, req *http.Request) (*http.Response, *zap.Logger, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log := logpkg.FromContextOr(ctx, c.logger).With(
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		log.Debug("backend request failed", zap.Duration("latency", duration), zap.Error(err))
		return nil, log, fmt.Errorf("%s %s: %w", req.Method, endpoint, err)
	}
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	log.Debug("backend response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	)
	return resp, log, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// readDetail extracts the "detail" field from a JSON error body.
// Returns "" if the body is not JSON or carries no detail.
func readDetail(r io.Reader) string {
	var parsed domain.ErrorBody
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&parsed); err != nil {
		return ""
	}
	return parsed.Detail
}

// meteredBody counts streamed bytes and logs the stream summary on Close.
type meteredBody struct {
	io.ReadCloser
	log   *zap.Logger
	start time.Time
	n     int64
	done  bool
}

func newMeteredBody(rc io.ReadCloser, log *zap.Logger) *meteredBody {
	return &meteredBody{ReadCloser: rc, log: log, start: time.Now()}
}

func (b *meteredBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.n += int64(n)
		metrics.StreamBytesTotal.Add(float64(n))
	}
	if err != nil && !errors.Is(err, io.EOF) {
		b.log.Warn("query stream interrupted", zap.Int64("bytes", b.n), zap.Error(err))
	}
	return n, err //nolint:wrapcheck // io.EOF must reach the caller unwrapped
}

func (b *meteredBody) Close() error {
	if !b.done {
		b.done = true
		dur := time.Since(b.start)
		metrics.StreamDuration.Observe(dur.Seconds())
		b.log.Debug("query stream closed", zap.Int64("bytes", b.n), zap.Duration("duration", dur))
	}
	return b.ReadCloser.Close() //nolint:wrapcheck // delegating to the transport body
}
