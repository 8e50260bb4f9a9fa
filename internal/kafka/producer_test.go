package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	errs    []error
	written []kafkago.Message
	calls   int
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.calls++
	if len(w.errs) > 0 {
		err := w.errs[0]
		w.errs = w.errs[1:]
		if err != nil {
			return err
		}
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testConfig() ProducerConfig {
	cfg := ProducerConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "video-events",
		RetryBackoff: time.Millisecond,
		Logger:       zerolog.Nop(),
	}
	setDefaults(&cfg)
	return cfg
}

func TestNewProducer_Defaults(t *testing.T) {
	producer, err := NewProducer(ProducerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "video-events",
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.Equal(t, "video-events", producer.config.Topic)
	assert.Equal(t, 3, producer.config.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, producer.config.RetryBackoff)
	assert.Equal(t, 10*time.Second, producer.config.WriteTimeout)
	assert.Equal(t, 100, producer.config.BatchSize)
	assert.False(t, producer.config.Async)
}

func TestNewProducer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  ProducerConfig
		wantErr string
	}{
		{"empty brokers", ProducerConfig{Topic: "t"}, "brokers list is empty"},
		{"empty topic", ProducerConfig{Brokers: []string{"b:9092"}}, "topic is empty"},
		{"negative max retries", ProducerConfig{Brokers: []string{"b:9092"}, Topic: "t", MaxRetries: -1}, "max_retries cannot be negative"},
		{"negative retry backoff", ProducerConfig{Brokers: []string{"b:9092"}, Topic: "t", RetryBackoff: -time.Second}, "retry_backoff cannot be negative"},
		{"negative write timeout", ProducerConfig{Brokers: []string{"b:9092"}, Topic: "t", WriteTimeout: -time.Second}, "write_timeout cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			producer, err := NewProducer(tt.config)

			require.Error(t, err)
			assert.Nil(t, producer)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetDefaults_DoesNotOverrideExisting(t *testing.T) {
	cfg := ProducerConfig{
		MaxRetries:   5,
		RetryBackoff: 200 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		BatchSize:    50,
	}
	setDefaults(&cfg)

	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestSetDefaults_DisableRetries(t *testing.T) {
	cfg := ProducerConfig{MaxRetries: 5, DisableRetries: true}
	setDefaults(&cfg)
	assert.Equal(t, 0, cfg.MaxRetries)

	cfg = ProducerConfig{}
	setDefaults(&cfg)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestProducer_Publish_SingleAttemptWhenRetriesDisabled(t *testing.T) {
	w := &fakeWriter{errs: []error{errors.New("connection refused")}}
	cfg := testConfig()
	cfg.DisableRetries = true
	setDefaults(&cfg)
	producer := newProducer(w, cfg)

	err := producer.Publish(context.Background(), "k", []byte("v"))
	require.Error(t, err)

	assert.Equal(t, 1, w.calls)
	assert.Zero(t, producer.GetMetrics().RetriesTotal)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	producer := newProducer(w, testConfig())

	err := producer.Publish(context.Background(), "video-1", []byte(`{"event_type":"video.published"}`))
	require.NoError(t, err)

	require.Len(t, w.written, 1)
	assert.Equal(t, "video-1", string(w.written[0].Key))
	assert.Equal(t, int64(1), producer.GetMetrics().MessagesPublished)
}

func TestProducer_Publish_RetriesTransientErrors(t *testing.T) {
	w := &fakeWriter{errs: []error{errors.New("connection refused"), errors.New("i/o timeout")}}
	producer := newProducer(w, testConfig())

	err := producer.Publish(context.Background(), "k", []byte("v"))
	require.NoError(t, err)

	assert.Equal(t, 3, w.calls)
	m := producer.GetMetrics()
	assert.Equal(t, int64(2), m.RetriesTotal)
	assert.Equal(t, int64(1), m.MessagesPublished)
}

func TestProducer_Publish_PermanentErrorNotRetried(t *testing.T) {
	w := &fakeWriter{errs: []error{errors.New("message too large")}}
	producer := newProducer(w, testConfig())

	err := producer.Publish(context.Background(), "k", []byte("v"))
	require.Error(t, err)

	assert.Equal(t, 1, w.calls)
	assert.Equal(t, int64(1), producer.GetMetrics().MessagesFailed)
}

func TestProducer_Publish_GivesUpAfterMaxRetries(t *testing.T) {
	fail := errors.New("leader not available")
	w := &fakeWriter{errs: []error{fail, fail, fail, fail, fail}}
	producer := newProducer(w, testConfig())

	err := producer.Publish(context.Background(), "k", []byte("v"))
	require.ErrorIs(t, err, fail)
	assert.Equal(t, 4, w.calls)
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &fakeWriter{}
	producer := newProducer(w, testConfig())

	require.NoError(t, producer.PublishBatch(context.Background(), nil))
	assert.Zero(t, w.calls)

	err := producer.PublishBatch(context.Background(), []Message{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
	})
	require.NoError(t, err)
	assert.Len(t, w.written, 2)
	assert.Equal(t, int64(2), producer.GetMetrics().MessagesPublished)
}

func TestProducer_GetMetrics(t *testing.T) {
	producer := newProducer(&fakeWriter{}, testConfig())

	producer.metrics.PublishDuration.Add(int64(100 * time.Millisecond))
	assert.Equal(t, time.Duration(0), producer.GetMetrics().AvgPublishTime)

	producer.metrics.MessagesPublished.Add(10)
	assert.Equal(t, 10*time.Millisecond, producer.GetMetrics().AvgPublishTime)
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	producer := newProducer(w, testConfig())

	require.NoError(t, producer.Close())
	assert.True(t, w.closed)

	err := producer.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already closed")

	err = producer.Publish(context.Background(), "k", []byte("v"))
	assert.ErrorContains(t, err, "producer is closed")

	err = producer.HealthCheck(context.Background())
	assert.ErrorContains(t, err, "producer is closed")
}

func TestIsRetriableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retriable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"connection refused", errors.New("connection refused"), true},
		{"leader not available", errors.New("leader not available"), true},
		{"kafka temporary", kafkago.LeaderNotAvailable, true},
		{"kafka permanent", kafkago.MessageSizeTooLarge, false},
		{"invalid message", errors.New("invalid message format"), false},
		{"authorization failed", errors.New("authorization failed"), false},
		{"unknown error", errors.New("some random error"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retriable, isRetriableError(tt.err))
		})
	}
}
