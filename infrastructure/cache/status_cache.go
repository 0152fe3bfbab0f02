package cache

import (
	"context"
	"encoding/json"
	"time"

	"socialcast/domain/model"
	"socialcast/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis. A nil client is a valid degraded mode; all
// cache operations become no-ops.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// IStatusCache caches rendered video idea snapshots for the dashboard read
// path so status polling does not hit PostgreSQL on every request.
type IStatusCache interface {
	Get(ctx context.Context, videoIdeaID string) (*model.VideoIdea, bool)
	Set(ctx context.Context, idea *model.VideoIdea)
	Invalidate(ctx context.Context, videoIdeaID string)
}

type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client, ttl: 30 * time.Second}
}

func (c *StatusCache) key(id string) string { return "video_idea:" + id }

func (c *StatusCache) Get(ctx context.Context, videoIdeaID string) (*model.VideoIdea, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(videoIdeaID)).Bytes()
	if err != nil {
		return nil, false
	}
	var idea model.VideoIdea
	if err := json.Unmarshal(raw, &idea); err != nil {
		return nil, false
	}
	return &idea, true
}

func (c *StatusCache) Set(ctx context.Context, idea *model.VideoIdea) {
	if c.client == nil || idea == nil {
		return
	}
	raw, err := json.Marshal(idea)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(idea.ID), raw, c.ttl).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Debug("status cache set failed")
	}
}

func (c *StatusCache) Invalidate(ctx context.Context, videoIdeaID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(videoIdeaID)).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Debug("status cache invalidate failed")
	}
}
