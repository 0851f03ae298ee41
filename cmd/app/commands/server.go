package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/tasks/internal/app"
	"github.com/allisson/tasks/internal/config"
)

const shutdownTimeout = 30 * time.Second

// Runnable is a long-lived server.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Worker runs until its context is canceled.
type Worker interface {
	Start(ctx context.Context) error
}

// RunServer starts the API server, the metrics server when METRICS_ENABLED
// is set and the outbox worker when WORKER_ENABLED is set. It blocks until
// SIGINT/SIGTERM or until one of them fails, then shuts the rest down.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	servers := []Runnable{server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	var workers []Worker
	if cfg.WorkerEnabled {
		worker, err := container.OutboxUseCase()
		if err != nil {
			return fmt.Errorf("failed to initialize outbox worker: %w", err)
		}
		workers = append(workers, worker)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, logger, shutdownTimeout, servers, workers)
}

// serve runs servers and workers in one errgroup. When ctx is done or any
// member fails, every server is shut down within timeout. A clean shutdown
// returns nil.
func serve(
	ctx context.Context,
	logger *slog.Logger,
	timeout time.Duration,
	servers []Runnable,
	workers []Worker,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, server := range servers {
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	for _, worker := range workers {
		g.Go(func() error {
			if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var shutdownErrors []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}

// RunWorker runs the outbox processor until ctx is canceled.
func RunWorker(ctx context.Context, worker Worker, logger *slog.Logger) error {
	logger.Info("starting outbox worker")

	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker: %w", err)
	}

	logger.Info("outbox worker stopped")
	return nil
}
