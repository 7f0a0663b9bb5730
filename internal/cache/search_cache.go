package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/metrics"
	"github.com/Dias221467/Tenvin_Social/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	searchKeyFormat     = "search:users:%d:%d:%s"
	searchGenerationKey = "search:users:generation"
)

// SearchKey is the key of one cached page. gen is bumped by Invalidate, which
// orphans every page written under an older generation.
func SearchKey(gen int64, query string, limit int) string {
	return fmt.Sprintf(searchKeyFormat, gen, limit, query)
}

// SearchCache memoizes user search results by normalized query. Entries may
// be evicted at any time; results are never required to come from here.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

// Get returns the cached page and the generation it was looked up under.
// Pass that generation to Set so a result computed before an Invalidate is
// never stored under the newer generation. gen is negative when the cache
// is unusable.
func (c *SearchCache) Get(ctx context.Context, query string, limit int) (users []models.PublicUser, gen int64, ok bool) {
	if c == nil || c.client == nil {
		return nil, -1, false
	}

	gen, err := c.client.Get(ctx, searchGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logrus.WithError(err).Warn("Search cache generation read failed")
		metrics.SearchCacheLookups.WithLabelValues("miss").Inc()
		return nil, -1, false
	}

	raw, err := c.client.Get(ctx, SearchKey(gen, query, limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("Search cache read failed")
		}
		metrics.SearchCacheLookups.WithLabelValues("miss").Inc()
		return nil, gen, false
	}

	if err := json.Unmarshal(raw, &users); err != nil {
		metrics.SearchCacheLookups.WithLabelValues("miss").Inc()
		return nil, gen, false
	}
	metrics.SearchCacheLookups.WithLabelValues("hit").Inc()
	return users, gen, true
}

func (c *SearchCache) Set(ctx context.Context, gen int64, query string, limit int, users []models.PublicUser) {
	if c == nil || c.client == nil || gen < 0 {
		return
	}

	raw, err := json.Marshal(users)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, SearchKey(gen, query, limit), raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("Search cache write failed")
	}
}

// Invalidate drops every cached page. Call it after a username is created or
// changed. Old pages expire on their own TTL.
func (c *SearchCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, searchGenerationKey).Err(); err != nil {
		logrus.WithError(err).Warn("Search cache invalidation failed")
	}
}
