package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration loaded from .env and the environment.
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	MongoURI string
	MongoDB  string

	JWTSecret string
	JWTIssuer string

	RedisURL       string
	SearchCacheTTL time.Duration

	GCSBucket          string
	GCSCredentialsFile string
	GCSPublicBaseURL   string

	FeedBatchSize  int
	FeedLimit      int
	SearchLimit    int
	SearchMinChars int
	SearchDebounce time.Duration

	ReconcileSchedule string
	RecountSchedule   string
	CleanupSchedule   string
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment only")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "tenvin"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: os.Getenv("JWT_ISSUER"),

		RedisURL:       os.Getenv("REDIS_URL"),
		SearchCacheTTL: getDuration("SEARCH_CACHE_TTL", 5*time.Minute),

		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		GCSPublicBaseURL:   getEnv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),

		FeedBatchSize:  getInt("FEED_BATCH_SIZE", 10),
		FeedLimit:      getInt("FEED_LIMIT", 50),
		SearchLimit:    getInt("SEARCH_LIMIT", 20),
		SearchMinChars: getInt("SEARCH_MIN_CHARS", 3),
		SearchDebounce: getDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),

		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 5s"),
		RecountSchedule:   getEnv("RECOUNT_SCHEDULE", "0 3 * * *"),
		CleanupSchedule:   getEnv("CLEANUP_SCHEDULE", "@daily"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.FeedBatchSize <= 0 {
		return errors.New("FEED_BATCH_SIZE must be positive")
	}
	if c.FeedLimit <= 0 {
		return errors.New("FEED_LIMIT must be positive")
	}
	if c.SearchLimit <= 0 {
		return errors.New("SEARCH_LIMIT must be positive")
	}
	if c.SearchMinChars < 0 {
		return errors.New("SEARCH_MIN_CHARS must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid duration in environment, using default")
		return fallback
	}
	return d
}
