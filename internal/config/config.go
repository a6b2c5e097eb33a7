package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Animation choreography.
	ShootDelay  time.Duration
	ImpactDelay time.Duration

	// JPL close-approach feed.
	NeoFeedEnabled bool
	JPLBaseURL     string
	JPLTimeout     time.Duration
	NeoFeedLimit   int

	// Gemini narrative generation.
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	GeminiTimeout      time.Duration
	NarrativeCacheSize int

	// Optional Kafka results sink. Empty brokers disables publishing.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	shootDelay, err := parseDuration("ANIMATION_SHOOT_DELAY", "2s", true)
	if err != nil {
		return nil, err
	}
	impactDelay, err := parseDuration("ANIMATION_IMPACT_DELAY", "2s", true)
	if err != nil {
		return nil, err
	}
	jplTimeout, err := parseDuration("JPL_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	geminiTimeout, err := parseDuration("GEMINI_TIMEOUT", "30s", false)
	if err != nil {
		return nil, err
	}

	feedLimit, err := parseInt("NEO_FEED_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	if feedLimit < 1 || feedLimit > 100 {
		return nil, errors.New("NEO_FEED_LIMIT must be between 1 and 100")
	}

	cacheSize, err := parseInt("NARRATIVE_CACHE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	if cacheSize < 0 {
		return nil, errors.New("NARRATIVE_CACHE_SIZE must not be negative")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ShootDelay:  shootDelay,
		ImpactDelay: impactDelay,

		NeoFeedEnabled: os.Getenv("NEO_FEED_ENABLED") != "false",
		JPLBaseURL:     sharedcfg.EnvOrDefault("JPL_BASE_URL", "https://ssd-api.jpl.nasa.gov"),
		JPLTimeout:     jplTimeout,
		NeoFeedLimit:   feedLimit,

		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        sharedcfg.EnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:      sharedcfg.EnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTimeout:      geminiTimeout,
		NarrativeCacheSize: cacheSize,

		KafkaTopic: sharedcfg.EnvOrDefault("KAFKA_TOPIC", "impact-simulations"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.GeminiModel == "" {
		return nil, errors.New("GEMINI_MODEL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether completed runs should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// parseDuration reads a duration variable. allowZero permits "0s" for the
// animation delays; timeouts must be positive.
func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
