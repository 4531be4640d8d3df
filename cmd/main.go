package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/eta/internal/adapters/http/api"
	"github.com/okian/eta/internal/adapters/http/site"
	"github.com/okian/eta/internal/adapters/http/swagger"
	"github.com/okian/eta/internal/adapters/mlflow"
	app "github.com/okian/eta/internal/app"
	"github.com/okian/eta/internal/config"
	"github.com/okian/eta/internal/domain/types"
	"github.com/okian/eta/pkg/logger"
	"github.com/okian/eta/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	writeTimeoutSlack         = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.InitWith(logger.ParseFormat(cfg.LogFormat), os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "service exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts the HTTP server down.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	mux, svc, err := newMux(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.ModelTimeout() + writeTimeoutSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newMux builds the model client, the prediction service and every route.
func newMux(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.ServeMux, *app.Service, error) {
	client, err := mlflow.New(cfg.ServingURL,
		mlflow.WithTimeout(cfg.ModelTimeout()),
		mlflow.WithLogger(log.Named("mlflow")),
		mlflow.WithModelCoordinates(cfg.TrackingURI, cfg.RunID, cfg.ArtifactPath),
		mlflow.WithBreaker(
			uint32(cfg.BreakerMaxRequests), //nolint:gosec // validated positive
			cfg.BreakerInterval(),
			cfg.BreakerTimeout(),
			uint32(cfg.BreakerFailureThreshold), //nolint:gosec // validated positive
		),
	)
	if err != nil {
		return nil, nil, err
	}

	info := types.DefaultModelInfo()
	info.TrackingURI = client.TrackingURI()
	info.ModelURI = client.ModelURI()
	info.ServingURL = client.ServingURL()

	svc := app.New(client,
		app.WithLogger(log.Named("service")),
		app.WithStartupCheck(cfg.StartupCheck),
		app.WithModelInfo(info),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	site.Register(ctx, mux, site.NewHandler(svc, log.Named("site")))
	return mux, svc, nil
}

// startSystemMetricsUpdater refreshes system metrics until ctx is cancelled.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		updateSystemMetrics()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
