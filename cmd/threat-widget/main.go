package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/di"
	"github.com/mikey/email-threat-widget/internal/ports"
	"github.com/mikey/email-threat-widget/internal/widget"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontend ports.Frontend,
	w *widget.Widget,
	classifier core.Classifier,
	cacheRepo core.CacheRepository,
	notifier core.ResultNotifier,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One advisory health probe on startup. It never gates the widget.
	go w.ProbeHealth(ctx)

	done := make(chan error, 1)
	go func() {
		done <- frontend.Run(ctx)
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		logger.Info("Shutting down...")
		cancel()
	case err := <-done:
		runErr = err
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := notifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close notifier", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return runErr
}
