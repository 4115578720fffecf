// Package config loads service settings from environment variables and an
// optional YAML engine tuning file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/fire-nowcast-engine/internal/spread"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// MinConfidence drops detections below this confidence before seeding.
	MinConfidence float64

	// Engine holds the spread model tuning, defaulted and optionally
	// overlaid from the YAML file at ENGINE_CONFIG_PATH.
	Engine spread.Config

	// Field service configuration. An empty URL selects the synthetic
	// provider instead of the HTTP client.
	FieldServiceURL     string
	FieldServiceTimeout time.Duration
	FieldCacheSize      int
	FieldCacheMaxAge    time.Duration

	// Synthetic provider grid shape, used when no field service is set.
	GridH int
	GridW int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	minConfidence, err := parseMinConfidence()
	if err != nil {
		return nil, err
	}

	engine, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	fieldTimeout, err := parsePositiveDuration("FIELD_SERVICE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	fieldMaxAge, err := parsePositiveDuration("FIELD_CACHE_MAX_AGE", "15m")
	if err != nil {
		return nil, err
	}

	gridH, err := parsePositiveInt("GRID_HEIGHT", 128)
	if err != nil {
		return nil, err
	}
	gridW, err := parsePositiveInt("GRID_WIDTH", 128)
	if err != nil {
		return nil, err
	}
	fieldCacheSize, err := parsePositiveInt("FIELD_CACHE_SIZE", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "fire-detections"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "fire-nowcasts"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "fire-nowcast-engine"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		MinConfidence:      minConfidence,
		Engine:             engine,

		FieldServiceURL:     os.Getenv("FIELD_SERVICE_URL"),
		FieldServiceTimeout: fieldTimeout,
		FieldCacheSize:      fieldCacheSize,
		FieldCacheMaxAge:    fieldMaxAge,
		GridH:               gridH,
		GridW:               gridW,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// loadEngineConfig starts from the model defaults, overlays the YAML file at
// ENGINE_CONFIG_PATH when set, then applies individual env overrides. The
// result is validated so a bad tuning file fails at startup, not mid-run.
func loadEngineConfig() (spread.Config, error) {
	engine := spread.DefaultConfig()

	if path := os.Getenv("ENGINE_CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return engine, fmt.Errorf("read ENGINE_CONFIG_PATH: %w", err)
		}
		if err := yaml.Unmarshal(data, &engine); err != nil {
			return engine, fmt.Errorf("parse ENGINE_CONFIG_PATH: %w", err)
		}
	}

	var err error
	if engine.NEnsemble, err = parsePositiveInt("ENSEMBLE_MEMBERS", engine.NEnsemble); err != nil {
		return engine, err
	}
	if engine.NTimesteps, err = parseNonNegativeInt("ENSEMBLE_TIMESTEPS", engine.NTimesteps); err != nil {
		return engine, err
	}
	if s := os.Getenv("ENSEMBLE_BASE_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return engine, errors.New("invalid ENSEMBLE_BASE_SEED")
		}
		engine.BaseSeed = seed
	}

	if err := engine.Validate(); err != nil {
		return engine, fmt.Errorf("engine config: %w", err)
	}
	return engine, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	n, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return 0, err
	}
	if n > 1000 {
		return 0, errors.New("invalid BATCH_SIZE: must be at most 1000")
	}
	return n, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseMinConfidence() (float64, error) {
	s := os.Getenv("MIN_CONFIDENCE")
	if s == "" {
		return 0.5, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, errors.New("invalid MIN_CONFIDENCE: must be in [0,1]")
	}
	return v, nil
}
