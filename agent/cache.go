package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/workflow"
)

// HandleCache is a Redis-backed cache of resolved agent handles with a
// bounded TTL. Its lifetime is tied to the owning service: created at
// startup, closed at shutdown. It replaces ambient process-wide maps keyed
// by agent id.
type HandleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// CacheConfig configures the handle cache.
type CacheConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// DefaultCacheConfig returns the default handle cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Addr: "localhost:6379",
		TTL:  5 * time.Minute,
	}
}

// NewHandleCache connects to Redis and verifies the connection.
func NewHandleCache(config CacheConfig, logger *zap.Logger) (*HandleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	logger.Info("agent handle cache initialized",
		zap.String("addr", config.Addr),
		zap.Duration("ttl", ttl),
	)

	return &HandleCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "handle_cache")),
	}, nil
}

func cacheKey(ownerID, agentID string) string {
	return fmt.Sprintf("agent_handle:%s:%s", ownerID, agentID)
}

// Get returns the cached handle for (agent, owner), if present.
func (c *HandleCache) Get(ctx context.Context, agentID, ownerID string) (*workflow.AgentInfo, bool) {
	data, err := c.client.Get(ctx, cacheKey(ownerID, agentID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("handle cache read failed", zap.String("agent_id", agentID), zap.Error(err))
		}
		return nil, false
	}

	var info workflow.AgentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		c.logger.Warn("handle cache entry corrupt, dropping",
			zap.String("agent_id", agentID),
			zap.Error(err),
		)
		c.client.Del(ctx, cacheKey(ownerID, agentID))
		return nil, false
	}
	return &info, true
}

// Put stores a resolved handle with the configured TTL. Write failures are
// logged, not surfaced; the cache is an optimization.
func (c *HandleCache) Put(ctx context.Context, ownerID string, info *workflow.AgentInfo) {
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(ownerID, info.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("handle cache write failed", zap.String("agent_id", info.ID), zap.Error(err))
	}
}

// Invalidate drops the cached handle for (agent, owner).
func (c *HandleCache) Invalidate(ctx context.Context, agentID, ownerID string) {
	c.client.Del(ctx, cacheKey(ownerID, agentID))
}

// Close releases the Redis connection.
func (c *HandleCache) Close() error {
	return c.client.Close()
}
