package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/container"
	"github.com/USSTM/courier-console/internal/logging"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg := config.Load()
	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	c, err := container.New(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
	s := &http.Server{
		Handler: c.Server.Routes(&cfg.CORS),
		Addr:    addr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "addr", addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return c.Subscriber.Run(ctx)
	})

	g.Go(func() error {
		if err := c.Worker.Start(); err != nil {
			return fmt.Errorf("push worker: %w", err)
		}
		logging.Info("Push worker started", "queue", cfg.Notifications.PushQueue)
		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		return c.Hub.Run(ctx, cfg.Notifications.SweepInterval)
	})

	// Handle graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		logging.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server stopped with error", "error", err)
		c.Cleanup()
		os.Exit(1)
	}
	logging.Info("Server stopped")
}
