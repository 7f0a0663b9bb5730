package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "tenvin", cfg.MongoDB)
	assert.Equal(t, 10, cfg.FeedBatchSize)
	assert.Equal(t, 50, cfg.FeedLimit)
	assert.Equal(t, 20, cfg.SearchLimit)
	assert.Equal(t, 3, cfg.SearchMinChars)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, "@every 5s", cfg.ReconcileSchedule)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("FEED_BATCH_SIZE", "5")
	t.Setenv("SEARCH_DEBOUNCE", "50ms")
	t.Setenv("FEED_LIMIT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.FeedBatchSize)
	assert.Equal(t, 50*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 50, cfg.FeedLimit)
}

func TestLoadConfigRequiresMongoAndSecret(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := LoadConfig()
	assert.EqualError(t, err, "MONGO_URI is required")

	t.Setenv("MONGO_URI", "mongodb://db")
	t.Setenv("JWT_SECRET", "")
	_, err = LoadConfig()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestValidateRejectsNonPositiveBatch(t *testing.T) {
	cfg := &Config{MongoURI: "x", JWTSecret: "y", FeedBatchSize: 0, FeedLimit: 50, SearchLimit: 20}
	assert.Error(t, cfg.Validate())
}
