package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/vidtube/internal/config"
	"github.com/romariotrain/vidtube/internal/httpapi"
	"github.com/romariotrain/vidtube/internal/social"
	"github.com/romariotrain/vidtube/internal/storage/postgres"
	"github.com/romariotrain/vidtube/internal/upload"
	"github.com/romariotrain/vidtube/internal/video/service"
)

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Database.URL})
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := postgres.Migrate(db, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	gateway, err := upload.NewS3Gateway(ctx, upload.S3Config{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("s3 gateway: %w", err)
	}

	// Dependencies
	repo := postgres.NewVideoRepo(db, postgres.NewOutboxRepo(db))
	svc := service.New(repo, gateway, logger)
	h := httpapi.New(svc, social.New(), httpapi.Options{
		TempDir:        cfg.Upload.TempDir,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})
	router := httpapi.NewRouter(h, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}
