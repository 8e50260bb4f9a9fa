package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Kafka    KafkaConfig
	Outbox   OutboxConfig
	LogLevel string
}

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL           string
	RunMigrations bool
}

type StorageConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

type UploadConfig struct {
	TempDir  string
	MaxBytes int64
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type OutboxConfig struct {
	Interval  time.Duration
	BatchSize int
	Retention time.Duration
}

// LoadAPI loads the configuration of the HTTP API process, which needs
// Postgres and S3.
func LoadAPI() (*Config, error) {
	cfg := load()
	if err := cfg.ValidateAPI(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadRelay loads the configuration of the outbox relay, which needs
// Postgres and Kafka only.
func LoadRelay() (*Config, error) {
	cfg := load()
	if err := cfg.ValidateRelay(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// load reads configuration from the environment, after merging a .env file
// if one exists in the working directory.
func load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			RunMigrations: getEnvAsBool("RUN_MIGRATIONS", true),
		},
		Storage: StorageConfig{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
		Upload: UploadConfig{
			TempDir:  getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
			MaxBytes: getEnvAsInt64("UPLOAD_MAX_BYTES", 1<<30), // 1GB
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "video-events"),
		},
		Outbox: OutboxConfig{
			Interval:  getEnvAsDuration("OUTBOX_INTERVAL", time.Second),
			BatchSize: int(getEnvAsInt64("OUTBOX_BATCH_SIZE", 100)),
			Retention: getEnvAsDuration("OUTBOX_RETENTION", 7*24*time.Hour),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

func (c *Config) ValidateAPI() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is empty"))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is empty"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) ValidateRelay() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is empty"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is empty"))
	}
	if c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is empty"))
	}
	if c.Outbox.Interval <= 0 {
		errs = append(errs, errors.New("OUTBOX_INTERVAL must be positive"))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.Outbox.Retention < 0 {
		errs = append(errs, errors.New("OUTBOX_RETENTION cannot be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
