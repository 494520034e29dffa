package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("expected default base url, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Client.PollInterval() != 5*time.Second {
		t.Errorf("expected PollInterval=5s, got %v", cfg.Client.PollInterval())
	}
	if cfg.Client.SettleDelay() != time.Second {
		t.Errorf("expected SettleDelay=1s, got %v", cfg.Client.SettleDelay())
	}
	if cfg.Client.StatusTimeout() != 4*time.Second {
		t.Errorf("expected StatusTimeout=4s, got %v", cfg.Client.StatusTimeout())
	}
	if cfg.Metrics.Port != 0 {
		t.Errorf("expected metrics disabled by default, got port %d", cfg.Metrics.Port)
	}
	if cfg.Metrics.ShutdownSec != 5 {
		t.Errorf("expected ShutdownSec=5, got %d", cfg.Metrics.ShutdownSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Backend: BackendConfig{BaseURL: "https://rag.example.com"},
		Client:  ClientConfig{PollIntervalMs: 2000, SettleDelayMs: 250, StatusTimeoutMs: 500},
		Metrics: MetricsConfig{Port: 9100, ShutdownSec: 2},
	}
	cfg.ApplyDefaults()

	if cfg.Backend.BaseURL != "https://rag.example.com" {
		t.Errorf("base url overridden: %q", cfg.Backend.BaseURL)
	}
	if cfg.Client.PollIntervalMs != 2000 {
		t.Errorf("expected PollIntervalMs=2000, got %d", cfg.Client.PollIntervalMs)
	}
	if cfg.Client.SettleDelayMs != 250 {
		t.Errorf("expected SettleDelayMs=250, got %d", cfg.Client.SettleDelayMs)
	}
	if cfg.Client.StatusTimeoutMs != 500 {
		t.Errorf("expected StatusTimeoutMs=500, got %d", cfg.Client.StatusTimeoutMs)
	}
	if cfg.Metrics.ShutdownSec != 2 {
		t.Errorf("expected ShutdownSec=2, got %d", cfg.Metrics.ShutdownSec)
	}
}

func TestValidate_BaseURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://host", "http://", "not a url"} {
		cfg := Config{Backend: BackendConfig{BaseURL: raw}}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for base url %q", raw)
		}
	}
}

func TestValidate_MetricsPort(t *testing.T) {
	cfg := Config{Metrics: MetricsConfig{Port: 70000}}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}

	expected := "metrics.port must be between 0 and 65535, got 70000"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_StatusTimeoutExceedsInterval(t *testing.T) {
	cfg := Config{Client: ClientConfig{PollIntervalMs: 1000, StatusTimeoutMs: 2000}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when status timeout exceeds poll interval")
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("RAGDESK_TEST_URL", "http://rag.internal:9000")

	cfg, err := Parse([]byte(`
backend:
  base_url: ${RAGDESK_TEST_URL}
client:
  poll_interval_ms: ${RAGDESK_TEST_POLL:-3000}
logging:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Backend.BaseURL != "http://rag.internal:9000" {
		t.Errorf("base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Client.PollIntervalMs != 3000 {
		t.Errorf("poll interval = %d, want default from expression", cfg.Client.PollIntervalMs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("backend: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_RepoConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("Load(%q): %v", env, err)
			}
		})
	}
}
