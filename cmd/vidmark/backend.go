package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vidmark/vidmark/internal/config"
	"github.com/vidmark/vidmark/internal/database"
	"github.com/vidmark/vidmark/internal/storage"
)

// openBlob builds the storage backend cfg names. The returned func releases it.
func openBlob(ctx context.Context, cfg config.Server, log *slog.Logger) (storage.Blob, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("memory backend selected; timestamps are lost on restart")
		return storage.NewMemory(), noop, nil

	case config.BackendFile:
		blob, err := storage.NewFile(cfg.DataDir, cfg.RootKey)
		if err != nil {
			return nil, nil, err
		}
		log.Info("file storage", "path", blob.Path())
		return blob, noop, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		blob, err := storage.OpenSQLite(ctx, cfg.SQLitePath, cfg.RootKey)
		if err != nil {
			return nil, nil, err
		}
		return blob, func() { _ = blob.Close() }, nil

	case config.BackendPostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		log.Info("database migrations applied")
		return storage.NewPostgres(db.Pool, cfg.RootKey), db.Close, nil

	case config.BackendS3:
		blob, err := storage.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		if err := blob.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("storage bucket check failed: %w", err)
		}
		log.Info("s3 storage", "bucket", cfg.S3.Bucket, "key", blob.ObjectKey())
		return blob, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
