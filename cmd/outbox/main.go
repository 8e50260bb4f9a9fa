package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/romariotrain/vidtube/internal/app"
	"github.com/romariotrain/vidtube/internal/config"
	"github.com/romariotrain/vidtube/internal/kafka"
	"github.com/romariotrain/vidtube/internal/outbox"
	"github.com/romariotrain/vidtube/internal/storage/postgres"
)

func main() {
	cfg, err := config.LoadRelay()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(app.Run("vidtube-outbox", cfg.LogLevel, func(ctx context.Context, logger zerolog.Logger) error {
		return run(ctx, cfg, logger)
	}))
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Database.URL, MaxOpenConns: 5, MaxIdleConns: 2})
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()

	if err := producer.HealthCheck(ctx); err != nil {
		logger.Warn().Err(err).Msg("kafka not reachable yet, relay will keep retrying")
	}

	publisher, err := outbox.NewPublisher(outbox.PublisherConfig{
		Store:     postgres.NewOutboxRepo(db),
		Producer:  producer,
		Interval:  cfg.Outbox.Interval,
		BatchSize: cfg.Outbox.BatchSize,
		Retention: cfg.Outbox.Retention,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("outbox publisher: %w", err)
	}

	if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
