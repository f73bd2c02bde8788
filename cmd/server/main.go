// Command server runs the media download and republish HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrrifat/anydownloader/internal/api"
	"github.com/mrrifat/anydownloader/internal/config"
	"github.com/mrrifat/anydownloader/internal/extract"
	"github.com/mrrifat/anydownloader/internal/observability"
	"github.com/mrrifat/anydownloader/internal/observability/types"
	"github.com/mrrifat/anydownloader/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.MustLoad()
	cfg := config.MustGet()

	obs := observability.NewProvider(&types.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
	defer obs.Close()

	log := obs.Logger("server")

	if err := os.MkdirAll(cfg.Download.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory %q: %w", cfg.Download.Dir, err)
	}

	// Fail fast on bad storage credentials instead of discovering them on
	// the first upload.
	var store storage.ObjectStore
	if cfg.Storage.Enabled {
		s3store, err := storage.NewS3Store(cfg.Storage, obs.Logger("storage"), obs.Metrics("storage"))
		if err != nil {
			return fmt.Errorf("failed to initialize object store: %w", err)
		}
		store = s3store
	}

	extractor := extract.NewYtdlpExtractor(cfg.Download, obs.Logger("extract"), obs.Metrics("extract"))
	publisher := storage.NewPublisher(store, cfg.Storage, obs.Logger("publish"), obs.Metrics("publish"))
	handler := api.NewDownloadHandler(extractor, publisher, cfg, obs.Logger("api"), obs.Metrics("api"))

	router := api.NewRouter(handler, cfg)
	server := api.NewServer(router, cfg, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info(context.Background(), "Service started", types.Fields{
		"addr":            cfg.Server.Addr,
		"download_dir":    cfg.Download.Dir,
		"uploads_enabled": cfg.Storage.Enabled,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info(context.Background(), "Shutdown signal received", types.Fields{
			"signal": sig.String(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
