package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Client wraps redis.Client with the stream operations the audit
// mirror needs, plus logging
type Client struct {
	redis  *redis.Client
	logger Logger
}

// NewClient creates a new Redis client wrapper
func NewClient(redisClient *redis.Client, logger Logger) *Client {
	return &Client{
		redis:  redisClient,
		logger: logger,
	}
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// AddToStream appends a record to a Redis stream and returns its id
func (c *Client) AddToStream(ctx context.Context, stream string, values map[string]interface{}) (string, error) {
	id, err := c.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		c.logger.Error("redis XADD failed", "stream", stream, "error", err)
		return "", fmt.Errorf("failed to add to stream %s: %w", stream, err)
	}
	c.logger.Debug("redis XADD", "stream", stream, "id", id)
	return id, nil
}

// TrimStream drops the oldest entries so the stream holds at most
// maxLen records. Trimming is approximate (XTRIM ~) to keep it cheap.
func (c *Client) TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error) {
	n, err := c.redis.XTrimMaxLenApprox(ctx, stream, maxLen, 0).Result()
	if err != nil {
		c.logger.Error("redis XTRIM failed", "stream", stream, "error", err)
		return 0, fmt.Errorf("failed to trim stream %s: %w", stream, err)
	}
	if n > 0 {
		c.logger.Debug("redis XTRIM", "stream", stream, "removed", n)
	}
	return n, nil
}

// StreamLen returns the number of records currently in a stream
func (c *Client) StreamLen(ctx context.Context, stream string) (int64, error) {
	n, err := c.redis.XLen(ctx, stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read stream length %s: %w", stream, err)
	}
	return n, nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	return c.redis.Close()
}
