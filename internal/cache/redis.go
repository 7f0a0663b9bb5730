// Package cache provides Redis-backed memoization. Every cache here is
// optional: a nil client turns reads into misses and writes into no-ops.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Connect returns a client for addr (host:port or redis:// URL), or nil when
// Redis is not configured or unreachable.
func Connect(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			logrus.WithError(err).Warn("Invalid REDIS_URL, continuing without cache")
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, continuing without cache")
		_ = client.Close()
		return nil
	}

	logrus.Info("Redis connected successfully")
	return client
}
