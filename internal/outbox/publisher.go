package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/vidtube/internal/storage/postgres"
)

// Store is the outbox table as seen by the relay.
type Store interface {
	GetPending(ctx context.Context, limit int) ([]postgres.OutboxRecord, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, cause error) error
	PurgeProcessed(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Publisher relays video events from the outbox table to Kafka with
// at-least-once delivery. Records are keyed by video id so events for one
// video stay ordered within a partition.
type Publisher struct {
	store     Store
	producer  Producer
	interval  time.Duration
	batchSize int
	retention time.Duration
	logger    zerolog.Logger
}

type PublisherConfig struct {
	Store     Store
	Producer  Producer
	Interval  time.Duration
	BatchSize int
	// Retention is how long relayed records are kept. Zero keeps them forever.
	Retention time.Duration
	Logger    zerolog.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if cfg.Store == nil {
		return nil, errors.New("outbox store is required")
	}
	if cfg.Producer == nil {
		return nil, errors.New("kafka producer is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got: %v", cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got: %d", cfg.BatchSize)
	}
	if cfg.Retention < 0 {
		return nil, fmt.Errorf("retention cannot be negative, got: %v", cfg.Retention)
	}

	return &Publisher{
		store:     cfg.Store,
		producer:  cfg.Producer,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		retention: cfg.Retention,
		logger:    cfg.Logger.With().Str("component", "outbox_publisher").Logger(),
	}, nil
}

const purgeInterval = time.Hour

// Start polls the outbox until ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var purge <-chan time.Time
	if p.retention > 0 {
		purgeTicker := time.NewTicker(purgeInterval)
		defer purgeTicker.Stop()
		purge = purgeTicker.C
	}

	p.logger.Info().
		Dur("interval", p.interval).
		Int("batch_size", p.batchSize).
		Msg("outbox publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("outbox publisher stopped")
			return ctx.Err()

		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to publish batch")
			}

		case <-purge:
			p.Purge(ctx)
		}
	}
}

// BatchStats summarises one relay pass.
type BatchStats struct {
	Total     int
	Published int
	Failed    int
	Marked    int
}

// PublishBatch relays one batch of pending records. A record that fails to
// publish stays pending and is retried on the next pass.
func (p *Publisher) PublishBatch(ctx context.Context) (BatchStats, error) {
	var stats BatchStats

	records, err := p.store.GetPending(ctx, p.batchSize)
	if err != nil {
		return stats, fmt.Errorf("get pending records: %w", err)
	}
	stats.Total = len(records)
	if stats.Total == 0 {
		return stats, nil
	}

	for _, record := range records {
		log := p.logger.With().
			Str("event_id", record.EventID).
			Str("event_type", record.EventType).
			Str("video_id", record.VideoID).
			Int64("outbox_id", record.ID).
			Int("attempts", record.Attempts).
			Logger()

		if err := p.producer.Publish(ctx, record.VideoID, record.Payload); err != nil {
			log.Error().Err(err).Msg("failed to publish event to kafka")
			stats.Failed++
			if mErr := p.store.MarkFailed(ctx, record.ID, err); mErr != nil {
				log.Warn().Err(mErr).Msg("failed to record relay failure")
			}
			continue
		}
		stats.Published++

		// An unmarked record is published again later; consumers dedupe by event_id.
		if err := p.store.MarkProcessed(ctx, record.ID); err != nil {
			log.Warn().Err(err).Msg("failed to mark event as processed")
			continue
		}
		stats.Marked++
	}

	p.logger.Info().
		Int("total", stats.Total).
		Int("published", stats.Published).
		Int("failed", stats.Failed).
		Int("marked", stats.Marked).
		Msg("batch processing completed")

	return stats, nil
}

// Purge drops relayed records older than the retention window.
func (p *Publisher) Purge(ctx context.Context) {
	if p.retention <= 0 {
		return
	}

	n, err := p.store.PurgeProcessed(ctx, p.retention)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to purge outbox")
		return
	}
	if n > 0 {
		p.logger.Info().Int64("deleted", n).Dur("retention", p.retention).Msg("outbox purged")
	}
}
