package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/baranaytass/syncwatch-platform/internal/model"
)

const sessionKeyPrefix = "syncwatch:session:"

// RedisSessionCache caches session snapshots as JSON values with a TTL.
type RedisSessionCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewRedisSessionCache creates the redis-backed session cache.
func NewRedisSessionCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisSessionCache {
	return &RedisSessionCache{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached session, or (nil, false) on miss or cache failure.
func (c *RedisSessionCache) Get(ctx context.Context, sessionID string) (*model.Session, bool) {
	raw, err := c.rdb.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("session cache read failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, false
	}
	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		c.log.Warn("session cache entry corrupt", zap.String("session_id", sessionID), zap.Error(err))
		c.Invalidate(ctx, sessionID)
		return nil, false
	}
	return &sess, true
}

// Set stores the session snapshot. The error is advisory: the durable
// store remains authoritative, but a failed Set means the entry now lags
// it and the caller must invalidate.
func (c *RedisSessionCache) Set(ctx context.Context, sess *model.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		c.log.Warn("session cache encode failed", zap.String("session_id", sess.ID), zap.Error(err))
		return err
	}
	if err := c.rdb.Set(ctx, sessionKeyPrefix+sess.ID, raw, c.ttl).Err(); err != nil {
		c.log.Warn("session cache write failed", zap.String("session_id", sess.ID), zap.Error(err))
		return err
	}
	return nil
}

// Invalidate drops the cache entry.
func (c *RedisSessionCache) Invalidate(ctx context.Context, sessionID string) {
	if err := c.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		c.log.Warn("session cache invalidate failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

var _ SessionCache = (*RedisSessionCache)(nil)
