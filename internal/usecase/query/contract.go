package query

import (
	"context"
	"io"

	"github.com/kailas-cloud/ragdesk/internal/domain"
)

// Backend is the query backend transport.
type Backend interface {
	Query(ctx context.Context, text string) (io.ReadCloser, error)
	Status(ctx context.Context) (domain.QueryStatus, error)
	Upload(ctx context.Context, path string) (domain.UploadResult, error)
}

// View is the surface the client drives: a submit control, a status
// message and a response buffer.
type View interface {
	SetSubmitEnabled(enabled bool)
	SetMessage(msg string)
	// ClearMessageIf clears the message only when it equals expected.
	ClearMessageIf(expected string) bool
	ClearResponse()
	AppendResponse(text string)
}
