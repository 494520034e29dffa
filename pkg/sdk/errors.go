package ragdesk

import "github.com/kailas-cloud/ragdesk/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrBackend           = domain.ErrBackend
	ErrMalformedResponse = domain.ErrMalformedResponse
	ErrEmptyQuery        = domain.ErrEmptyQuery
	ErrNoFile            = domain.ErrNoFile
)

// APIError is a non-2xx backend reply. Use errors.As() to read Detail.
type APIError = domain.APIError
