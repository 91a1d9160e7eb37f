package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/lecture-recap/internal/app"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/handler"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/runner"
	"github.com/nguyentantai21042004/lecture-recap/internal/watcher"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file (empty for env only)")
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Lecture Recap Pipeline (local)")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Max Concurrent Transcriptions: %d", cfg.Performance.MaxConcurrent)
	log.Info(ctx, "Configuration loaded successfully")

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Setup graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigChan:
			log.Info(ctx, "Shutdown signal received: %s", s)
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := app.Build(ctx, ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		os.Exit(1)
	}

	group, err := services(a, log)
	if err != nil {
		log.Error(ctx, "Failed to create services: %v", err)
		a.Close()
		os.Exit(1)
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Pipeline is ready!")
	log.Info(ctx, "  - API: %s", cfg.Server.PublicURL)
	log.Info(ctx, "  - Storage: %s (bucket %s)", cfg.Storage.Driver, cfg.Storage.Bucket)
	log.Info(ctx, "  - Dispatch: %s", cfg.Dispatch.Driver)
	log.Info(ctx, "  - Summary: %s", cfg.Summary.Provider)
	if cfg.Watcher.Enabled {
		log.Info(ctx, "  - Watching: %s", uploadsDir(cfg))
	}
	log.Info(ctx, "")
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	runErr := group.Run(ctx)

	// Graceful shutdown
	log.Info(ctx, "Shutting down gracefully...")
	if err := a.Close(); err != nil {
		log.Error(ctx, "Shutdown error: %v", err)
	}
	if runErr != nil {
		log.Error(ctx, "Pipeline stopped with error: %v", runErr)
		os.Exit(1)
	}
	log.Info(ctx, "Pipeline stopped")
}

func services(a *app.App, log logger.Logger) (runner.Group, error) {
	cfg := a.Config

	opts := handler.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins}
	if cfg.Storage.Driver == config.StorageLocal {
		opts.Uploads = a.Store
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.NewRouter(a.Handler, opts, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	group := runner.Group{runner.HTTP(srv, 30*time.Second)}

	if !cfg.Watcher.Enabled {
		return group, nil
	}
	if cfg.Storage.Driver != config.StorageLocal {
		return nil, fmt.Errorf("watcher requires the local storage driver")
	}

	w, err := watcher.New(uploadsDir(cfg), startJob(a.Handler, cfg.Storage.Bucket), log, watcher.Options{
		Extension:     cfg.Audio.Extension,
		Settle:        cfg.Watcher.Settle,
		MaxConcurrent: cfg.Performance.MaxConcurrent,
	})
	if err != nil {
		return nil, err
	}

	group = append(group, runner.Func("uploads watcher", func(ctx context.Context) error {
		defer w.Stop()
		return w.Start(ctx)
	}))
	return group, nil
}

// startJob feeds settled uploads through StartProcessing, as an S3 trigger
// would.
func startJob(h handler.Handler, bucket string) watcher.EventHandler {
	return func(ctx context.Context, jobID string) error {
		payload, err := json.Marshal(map[string]string{"summaryId": jobID, "bucket": bucket})
		if err != nil {
			return err
		}
		resp := h.StartProcessing(ctx, payload)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("start processing: status %d: %s", resp.StatusCode, resp.Body)
		}
		return nil
	}
}

func uploadsDir(cfg *config.Config) string {
	return filepath.Join(cfg.Storage.LocalRoot, cfg.Storage.Bucket, filepath.FromSlash(strings.TrimSuffix(cfg.Storage.UploadsPrefix, "/")))
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{cfg.Paths.Temp}
	if cfg.Storage.Driver == config.StorageLocal {
		dirs = append(dirs, uploadsDir(cfg))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
