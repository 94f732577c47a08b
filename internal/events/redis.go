package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events on the admin feed Pub/Sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on the admin feed channel.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: config.CacheKey.AdminFeedChannel()}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Subscribe opens a subscription to the admin feed. Caller closes it.
func (p *RedisPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.rdb.Subscribe(ctx, p.channel)
}
