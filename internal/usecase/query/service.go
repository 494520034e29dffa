package query

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdesk/internal/domain"
	"github.com/kailas-cloud/ragdesk/internal/metrics"
	"github.com/kailas-cloud/ragdesk/internal/textstream"
)

const (
	defaultPollInterval = 5 * time.Second
	// defaultSettleDelay gives the backend time to clear its busy flag
	// before the post-query status re-check.
	defaultSettleDelay = time.Second
)

// Service is the query client: it submits queries, streams replies into
// the view, uploads documents and mirrors the backend busy flag onto the
// submit control.
type Service struct {
	backend      Backend
	view         View
	logger       *zap.Logger
	pollInterval time.Duration
	settleDelay  time.Duration
}

// New creates a Service with the default poll interval and settle delay.
func New(backend Backend, view View, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:      backend,
		view:         view,
		logger:       logger,
		pollInterval: defaultPollInterval,
		settleDelay:  defaultSettleDelay,
	}
}

// WithPollInterval sets the status polling period.
func (s *Service) WithPollInterval(d time.Duration) *Service {
	if d > 0 {
		s.pollInterval = d
	}
	return s
}

// WithSettleDelay sets the wait between a finished query and its status
// re-check. Zero re-checks immediately.
func (s *Service) WithSettleDelay(d time.Duration) *Service {
	if d >= 0 {
		s.settleDelay = d
	}
	return s
}

// SubmitQuery sends text to the backend and streams the reply into the
// view. It returns after the post-query status re-check.
func (s *Service) SubmitQuery(ctx context.Context, text string) {
	if !(domain.QueryRequest{QueryText: text}).Valid() {
		s.view.SetMessage(domain.MsgEnterQuery)
		return
	}

	s.view.SetSubmitEnabled(false)
	s.view.SetMessage(domain.MsgProcessing)
	s.view.ClearResponse()

	defer s.finalize(ctx)

	if err := s.stream(ctx, text); err != nil {
		s.view.SetMessage(queryErrorMessage(err))
		s.logger.Error("query failed", zap.Error(err))
	}
}

func (s *Service) stream(ctx context.Context, text string) error {
	body, err := s.backend.Query(ctx, text)
	if err != nil {
		return err //nolint:wrapcheck // already carries endpoint context
	}
	defer body.Close()

	n, err := textstream.Stream(body, s.view.AppendResponse)
	if err != nil {
		return err //nolint:wrapcheck // transport read error
	}
	s.logger.Debug("query answered", zap.Int64("bytes", n))
	return nil
}

// finalize waits the settle delay, then re-checks the busy flag so the
// submit control reflects the backend's view of the finished query.
func (s *Service) finalize(ctx context.Context) {
	if s.settleDelay > 0 {
		t := time.NewTimer(s.settleDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
	s.CheckStatus(ctx)
}

// queryErrorMessage maps a query failure to the message shown to the user.
func queryErrorMessage(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return domain.MsgQueryFailed
}

// CheckStatus mirrors the backend busy flag onto the submit control.
// Failures are logged and otherwise ignored.
func (s *Service) CheckStatus(ctx context.Context) {
	status, err := s.backend.Status(ctx)
	if err != nil {
		metrics.StatusPollFailuresTotal.Inc()
		s.logger.Warn("status check failed", zap.Error(err))
		return
	}

	if status.Active {
		metrics.BackendBusy.Set(1)
		s.view.SetSubmitEnabled(false)
		s.view.SetMessage(domain.MsgBusy)
		return
	}

	metrics.BackendBusy.Set(0)
	s.view.SetSubmitEnabled(true)
	s.view.ClearMessageIf(domain.MsgBusy)
}

// Run checks status once, then on every poll interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	s.CheckStatus(ctx)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckStatus(ctx)
		}
	}
}

// UploadFile sends the file at path to the backend and shows the outcome.
func (s *Service) UploadFile(ctx context.Context, path string) {
	if strings.TrimSpace(path) == "" {
		s.view.SetMessage(domain.MsgSelectFile)
		return
	}

	s.view.SetMessage(domain.MsgUploading)

	res, err := s.backend.Upload(ctx, path)
	switch {
	case err != nil:
		s.logger.Error("upload failed", zap.String("path", path), zap.Error(err))
		s.view.SetMessage(domain.MsgUploadFailed)
	case res.Message == "":
		s.logger.Warn("upload reply carried no message", zap.String("path", path))
		s.view.SetMessage(domain.MsgUploadFailed)
	default:
		s.view.SetMessage(res.Message)
	}
}
