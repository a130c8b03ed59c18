package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashik5757/Minio-Private-Bucket/internal/config"
	"github.com/ashik5757/Minio-Private-Bucket/internal/download"
	"github.com/ashik5757/Minio-Private-Bucket/internal/events"
	"github.com/ashik5757/Minio-Private-Bucket/internal/server"
	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
	"github.com/ashik5757/Minio-Private-Bucket/internal/task"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Start the bucket browser HTTP server.

The server runs until SIGINT/SIGTERM, then drains connections and
waits for in-flight folder downloads to reach a terminal state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	registry := task.NewRegistry()
	bus := events.NewBus(cfg.EventBuffer)
	defer bus.Close()

	orch, err := download.NewOrchestrator(cfg, store, registry, bus, logger)
	if err != nil {
		return err
	}
	go orch.Run()

	srv := server.New(cfg, orch, store, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		orch.Close()
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown was not clean")
	}

	// Let running tasks reach a terminal state before the process exits,
	// so no half-written archives survive as apparent successes.
	orch.Close()
	return nil
}
