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

	"github.com/vidmark/vidmark/internal/config"
	"github.com/vidmark/vidmark/internal/logger"
	"github.com/vidmark/vidmark/internal/metrics"
	"github.com/vidmark/vidmark/internal/server"
	"github.com/vidmark/vidmark/internal/timestamp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = config.Load()

	cfg, err := config.ServerFromEnv()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blob, closeBlob, err := openBlob(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	defer closeBlob()
	log.Info("storage ready", "backend", cfg.Backend, "root_key", cfg.RootKey)

	if cfg.TokenSecret == "" {
		log.Warn("API_TOKEN_SECRET is not set; the API accepts unauthenticated requests")
	}

	svc := timestamp.NewService(blob, timestamp.WithLogger(log))
	srv := server.New(server.Config{
		Timestamps:     svc,
		Metrics:        metrics.New(),
		Logger:         log,
		BaseURL:        cfg.BaseURL,
		TokenSecret:    cfg.TokenSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		EnableDocs:     cfg.EnableDocs,
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("vidmark listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-shutdownCh:
	}
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}
