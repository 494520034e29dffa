package ragdesk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/ragdesk/internal/domain"
	"github.com/kailas-cloud/ragdesk/internal/textstream"
	"github.com/kailas-cloud/ragdesk/internal/transport/backend"
)

// Client is the ragdesk SDK entry point.
type Client struct {
	backend *backend.Client
	obs     *observer
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	b, err := backend.NewClient(&backend.Config{
		BaseURL:       baseURL,
		HTTPClient:    cfg.httpClient,
		StatusTimeout: cfg.statusTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ragdesk: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return &Client{backend: b, obs: obs}, nil
}

// Ask submits a query and calls onChunk with each decoded piece of the
// answer, in order, as it arrives. It returns once the stream ends.
// Blank text fails with ErrEmptyQuery without contacting the backend; a
// rejected query fails with *APIError.
func (c *Client) Ask(ctx context.Context, text string, onChunk func(string)) (err error) {
	start := time.Now()
	var n int64
	defer func() { c.obs.observe("ask", start, err, "bytes", n) }()

	if !(domain.QueryRequest{QueryText: text}).Valid() {
		return ErrEmptyQuery
	}

	body, err := c.backend.Query(ctx, text)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	defer body.Close()

	if onChunk == nil {
		onChunk = func(string) {}
	}
	n, err = textstream.Stream(body, onChunk)
	if err != nil {
		return fmt.Errorf("ask: read answer: %w", err)
	}
	return nil
}

// AskText is Ask collecting the whole answer.
func (c *Client) AskText(ctx context.Context, text string) (string, error) {
	var sb strings.Builder
	if err := c.Ask(ctx, text, func(s string) { sb.WriteString(s) }); err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}

// Busy reports whether the backend has a query in flight for this client.
func (c *Client) Busy(ctx context.Context) (busy bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("busy", start, err) }()

	status, err := c.backend.Status(ctx)
	if err != nil {
		return false, fmt.Errorf("busy: %w", err)
	}
	return status.Active, nil
}

// Upload sends the document at path and returns the backend's message.
// The message is returned even when the backend rejects the file.
func (c *Client) Upload(ctx context.Context, path string) (msg string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upload", start, err, "path", path) }()

	if strings.TrimSpace(path) == "" {
		return "", ErrNoFile
	}

	res, err := c.backend.Upload(ctx, path)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return res.Message, nil
}
