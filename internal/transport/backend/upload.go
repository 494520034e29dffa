package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdesk/internal/domain"
)

// uploadField is the multipart form field the backend reads the file from.
const uploadField = "file"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload streams the file at path to the backend as multipart form data.
// The server message is returned for any status code; an undecodable
// reply yields domain.ErrMalformedResponse.
func (c *Client) Upload(ctx context.Context, path string) (domain.UploadResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, filepath.Base(path), f))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointUpload, pr)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, log, err := c.do(ctx, EndpointUpload, req)
	if err != nil {
		return domain.UploadResult{}, err
	}
	defer resp.Body.Close()

	var result domain.UploadResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&result); err != nil {
		log.Warn("upload reply not decodable", zap.Int("status", resp.StatusCode), zap.Error(err))
		return domain.UploadResult{}, fmt.Errorf("decode upload reply: %w: %w", domain.ErrMalformedResponse, err)
	}

	if !isSuccess(resp.StatusCode) {
		log.Warn("upload rejected", zap.Int("status", resp.StatusCode), zap.String("message", result.Message))
	}
	return result, nil
}

// writeFilePart writes a single file part and closes the multipart writer.
func writeFilePart(mw *multipart.Writer, name string, r io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(uploadField), quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentTypeFor(name))

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
