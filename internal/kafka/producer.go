package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// ProducerConfig configures the video event producer.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	RetryBackoff time.Duration
	WriteTimeout time.Duration
	BatchSize    int
	Async        bool
	Logger       zerolog.Logger

	// MaxRetries is the number of retries after the first write. Zero means
	// the default of 3; set DisableRetries for a single attempt.
	MaxRetries     int
	DisableRetries bool
}

type Message struct {
	Key   string
	Value []byte
}

// Metrics is a point-in-time snapshot of producer counters.
type Metrics struct {
	MessagesPublished int64
	MessagesFailed    int64
	RetriesTotal      int64
	AvgPublishTime    time.Duration
}

type counters struct {
	MessagesPublished atomic.Int64
	MessagesFailed    atomic.Int64
	RetriesTotal      atomic.Int64
	PublishDuration   atomic.Int64
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Producer struct {
	writer  messageWriter
	config  ProducerConfig
	logger  zerolog.Logger
	metrics counters
	closed  atomic.Bool
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid producer config: %w", err)
	}
	setDefaults(&cfg)

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafkago.RequireAll,
		Async:        cfg.Async,
	}

	return newProducer(w, cfg), nil
}

func newProducer(w messageWriter, cfg ProducerConfig) *Producer {
	return &Producer{
		writer: w,
		config: cfg,
		logger: cfg.Logger.With().Str("component", "kafka_producer").Str("topic", cfg.Topic).Logger(),
	}
}

func validateConfig(cfg *ProducerConfig) error {
	switch {
	case len(cfg.Brokers) == 0:
		return errors.New("brokers list is empty")
	case cfg.Topic == "":
		return errors.New("topic is empty")
	case cfg.MaxRetries < 0:
		return errors.New("max_retries cannot be negative")
	case cfg.RetryBackoff < 0:
		return errors.New("retry_backoff cannot be negative")
	case cfg.WriteTimeout < 0:
		return errors.New("write_timeout cannot be negative")
	}
	return nil
}

func setDefaults(cfg *ProducerConfig) {
	switch {
	case cfg.DisableRetries:
		cfg.MaxRetries = 0
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
}

// Publish writes one message keyed by key, retrying transient failures.
// Messages with the same key land on the same partition.
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	return p.PublishBatch(ctx, []Message{{Key: key, Value: value}})
}

func (p *Producer) PublishBatch(ctx context.Context, messages []Message) error {
	if p.closed.Load() {
		return errors.New("producer is closed")
	}
	if len(messages) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, kafkago.Message{Key: []byte(m.Key), Value: m.Value})
	}

	start := time.Now()
	err := p.writeWithRetry(ctx, msgs)
	p.metrics.PublishDuration.Add(int64(time.Since(start)))

	if err != nil {
		p.metrics.MessagesFailed.Add(int64(len(msgs)))
		return fmt.Errorf("kafka publish: %w", err)
	}
	p.metrics.MessagesPublished.Add(int64(len(msgs)))
	return nil
}

func (p *Producer) writeWithRetry(ctx context.Context, msgs []kafkago.Message) error {
	var err error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			p.metrics.RetriesTotal.Add(1)
			backoff := p.config.RetryBackoff * time.Duration(1<<(attempt-1))

			p.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying kafka write")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err = p.writer.WriteMessages(ctx, msgs...)
		if err == nil || !isRetriableError(err) {
			return err
		}
	}
	return err
}

// HealthCheck dials the first reachable broker.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p.closed.Load() {
		return errors.New("producer is closed")
	}

	var lastErr error
	for _, broker := range p.config.Brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

func (p *Producer) GetMetrics() Metrics {
	published := p.metrics.MessagesPublished.Load()

	m := Metrics{
		MessagesPublished: published,
		MessagesFailed:    p.metrics.MessagesFailed.Load(),
		RetriesTotal:      p.metrics.RetriesTotal.Load(),
	}
	if published > 0 {
		m.AvgPublishTime = time.Duration(p.metrics.PublishDuration.Load() / published)
	}
	return m
}

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return errors.New("producer already closed")
	}

	m := p.GetMetrics()
	p.logger.Info().
		Int64("published", m.MessagesPublished).
		Int64("failed", m.MessagesFailed).
		Int64("retries", m.RetriesTotal).
		Msg("kafka producer closed")

	return p.writer.Close()
}

var permanentErrors = []string{
	"invalid message",
	"message too large",
	"authorization failed",
}

func isRetriableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var kerr kafkago.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary()
	}

	msg := strings.ToLower(err.Error())
	for _, p := range permanentErrors {
		if strings.Contains(msg, p) {
			return false
		}
	}
	return true
}
