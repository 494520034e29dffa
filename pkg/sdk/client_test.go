package ragdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var queryCalls atomic.Int64

func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/query", func(w http.ResponseWriter, r *http.Request) {
		queryCalls.Add(1)
		var body struct {
			QueryText string `json:"query_text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.QueryText == "fail" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"detail":"model is loading"}`)
			return
		}
		flusher := w.(http.Flusher)
		for _, chunk := range [][]byte{[]byte("Ответ"), []byte(": 4")} {
			_, _ = w.Write(chunk)
			flusher.Flush()
		}
	})
	r.Get("/query_status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"active":true}`)
	})
	r.Post("/upload_pdf", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"No file provided."}`)
			return
		}
		_, _ = io.WriteString(w, `{"message":"Indexed `+header.Filename+`"}`)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := New("localhost"); err == nil {
		t.Fatal("expected error for URL without scheme")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	hc := &http.Client{}
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	WithHTTPClient(hc).apply(cfg)
	WithStatusTimeout(3).apply(cfg)
	WithLogger(logger).apply(cfg)
	WithPrometheus(reg).apply(cfg)

	if cfg.httpClient != hc {
		t.Error("http client not set")
	}
	if cfg.statusTimeout != 3 {
		t.Errorf("statusTimeout = %v", cfg.statusTimeout)
	}
	if cfg.logger != logger {
		t.Error("logger not set")
	}
	if cfg.metricsReg != reg {
		t.Error("registerer not set")
	}
}

func TestClient_AskText(t *testing.T) {
	srv := newFakeBackend(t)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	answer, err := c.AskText(context.Background(), "What is 2+2?")
	if err != nil {
		t.Fatalf("AskText: %v", err)
	}
	if answer != "Ответ: 4" {
		t.Errorf("answer = %q", answer)
	}
}

func TestClient_Ask_EmptyQuery(t *testing.T) {
	srv := newFakeBackend(t)
	c, _ := New(srv.URL)

	before := queryCalls.Load()
	err := c.Ask(context.Background(), "   ", nil)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if queryCalls.Load() != before {
		t.Error("blank query must not reach the backend")
	}
}

func TestClient_Ask_APIError(t *testing.T) {
	srv := newFakeBackend(t)
	c, _ := New(srv.URL)

	err := c.Ask(context.Background(), "fail", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Detail != "model is loading" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
	if !errors.Is(err, ErrBackend) {
		t.Error("expected errors.Is(err, ErrBackend)")
	}
}

func TestClient_Busy(t *testing.T) {
	srv := newFakeBackend(t)
	c, _ := New(srv.URL)

	busy, err := c.Busy(context.Background())
	if err != nil {
		t.Fatalf("Busy: %v", err)
	}
	if !busy {
		t.Error("expected busy")
	}
}

func TestClient_Upload(t *testing.T) {
	srv := newFakeBackend(t)
	c, _ := New(srv.URL)

	if _, err := c.Upload(context.Background(), ""); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "manual.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}
	msg, err := c.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if msg != "Indexed manual.pdf" {
		t.Errorf("message = %q", msg)
	}
}

func TestClient_ObservesOperations(t *testing.T) {
	srv := newFakeBackend(t)
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := New(srv.URL, WithPrometheus(reg), WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, _ = c.AskText(context.Background(), "ok")
	_ = c.Ask(context.Background(), "fail", nil)

	if v := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("ask", "ok")); v != 1 {
		t.Errorf("ask ok = %f, want 1", v)
	}
	if v := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("ask", "error")); v != 1 {
		t.Errorf("ask error = %f, want 1", v)
	}
	if !strings.Contains(logs.String(), "operation failed") {
		t.Errorf("expected failure log, got:\n%s", logs.String())
	}
}

func TestNew_ReusesMetricsOnSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New("http://localhost:8000", WithPrometheus(reg))
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	b, err := New("http://localhost:8000", WithPrometheus(reg))
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if a.obs.metrics.operations != b.obs.metrics.operations {
		t.Error("expected shared collectors")
	}
}

func TestObserver_Nil(t *testing.T) {
	var o *observer
	o.observe("noop", time.Now(), nil) // must not panic
}
