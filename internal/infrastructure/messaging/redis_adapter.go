package messaging

import (
	"context"

	"github.com/campus-hub/campus-placement-hub/internal/infrastructure/persistence/redis"
)

// CacheRedisClient adapts the redis.Cache to the RedisClient interface
// used by RedisEventBus.
type CacheRedisClient struct {
	cache *redis.Cache
}

// NewCacheRedisClient wraps a redis.Cache for event bus use.
func NewCacheRedisClient(cache *redis.Cache) *CacheRedisClient {
	return &CacheRedisClient{cache: cache}
}

// Publish publishes a message to a Redis channel. The bus hands over an
// already-serialized payload, so this goes to the raw client rather than
// Cache.Publish, which would JSON-encode the string a second time.
func (c *CacheRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.cache.Client().Publish(ctx, channel, message).Err()
}

// Subscribe subscribes to Redis channels and bridges messages into RedisMessage values.
// The returned channel closes when ctx is cancelled.
func (c *CacheRedisClient) Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error) {
	pubsub := c.cache.Subscribe(ctx, channels...)

	// Wait for subscription confirmation before returning.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan RedisMessage)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close is a no-op; the underlying cache owns the connection.
func (c *CacheRedisClient) Close() error {
	return nil
}
