package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdesk/internal/config"
	logpkg "github.com/kailas-cloud/ragdesk/internal/logger"
	"github.com/kailas-cloud/ragdesk/internal/metrics"
	"github.com/kailas-cloud/ragdesk/internal/transport/backend"
	"github.com/kailas-cloud/ragdesk/internal/transport/ops"
	"github.com/kailas-cloud/ragdesk/internal/ui"
	queryuc "github.com/kailas-cloud/ragdesk/internal/usecase/query"
	"github.com/kailas-cloud/ragdesk/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragdesk",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("build_date", version.Date),
		zap.String("env", env),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Duration("poll_interval", cfg.Client.PollInterval()),
		zap.Int("metrics_port", cfg.Metrics.Port),
	)

	// Register client metrics explicitly (no init())
	metrics.RegisterClientMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	client, err := backend.NewClient(&backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		StatusTimeout: cfg.Client.StatusTimeout(),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	term := ui.NewTerminal(os.Stdout)
	svc := queryuc.New(client, term, logger).
		WithPollInterval(cfg.Client.PollInterval()).
		WithSettleDelay(cfg.Client.SettleDelay())

	var opsSrv *http.Server
	if cfg.Metrics.Port > 0 {
		opsSrv = startOpsServer(cfg.Metrics, term, logger)
	}

	go svc.Run(ctx)

	if err := runREPL(ctx, os.Stdin, term, svc); err != nil {
		logger.Error("Input loop stopped", zap.Error(err))
	}
	stop()

	if opsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Metrics.ShutdownSec)*time.Second)
		defer cancel()
		if err := opsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during ops listener shutdown", zap.Error(err))
		}
	}

	logger.Info("ragdesk stopped")
}

// startOpsServer serves /metrics and /health in the background.
func startOpsServer(cfg config.MetricsConfig, term *ui.Terminal, logger *zap.Logger) *http.Server {
	opsMetrics, err := metrics.NewOps(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register ops metrics", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: ops.NewRouter(ops.RouterConfig{
			Logger:  logger,
			Ops:     opsMetrics,
			APIKeys: cfg.APIKeys,
			Status:  term,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting ops listener", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ops listener error", zap.Error(err))
		}
	}()
	return srv
}
