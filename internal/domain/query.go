package domain

import "strings"

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	QueryText string `json:"query_text"`
}

// Valid reports whether the query carries non-blank text.
func (r QueryRequest) Valid() bool {
	return strings.TrimSpace(r.QueryText) != ""
}

// QueryStatus is the body of GET /query_status.
type QueryStatus struct {
	Active bool `json:"active"`
}

// UploadResult is the body returned by POST /upload_pdf.
type UploadResult struct {
	Message string `json:"message"`
}

// ErrorBody is the JSON shape of a failed /query reply.
type ErrorBody struct {
	Detail string `json:"detail"`
}
