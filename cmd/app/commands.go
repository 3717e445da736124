package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allisson/aegis/internal/app"
	"github.com/allisson/aegis/internal/config"
)

// shutdownTimeout bounds how long a stopping server waits for in-flight requests.
const shutdownTimeout = 30 * time.Second

// runServer starts the HTTP server and blocks until a termination signal.
func runServer(ctx context.Context) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("termination signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown http server", slog.Any("error", err))
	}
	if err := container.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}

	return nil
}

// runCreateLocalKey prints a fresh base64key:// URI for the localsecrets
// keeper, suitable for the KMS_KEY_URI setting in development.
func runCreateLocalKey() error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	fmt.Printf("base64key://%s\n", base64.URLEncoding.EncodeToString(key))
	return nil
}
