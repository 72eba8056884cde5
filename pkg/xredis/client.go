package xredis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("not found")

type Client interface {
	Del(ctx context.Context, keys ...string) error

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	GetObj(ctx context.Context, key string, v any) error
	SetObj(ctx context.Context, key string, v any, ttl time.Duration) error

	// Sorted set
	ZIncrBy(ctx context.Context, key string, incr int64, member string) error
	ZRevRangeWithScores(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolSize:        10,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.redisClient.Del(ctx, keys...).Err()
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	s, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}

	return s, err
}

func (c *client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.redisClient.Set(ctx, key, value, ttl).Err()
}

func (c *client) GetObj(ctx context.Context, key string, v any) error {
	s, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}

func (c *client) SetObj(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, string(b), ttl)
}

func (c *client) ZIncrBy(ctx context.Context, key string, incr int64, member string) error {
	return c.redisClient.ZIncrBy(ctx, key, float64(incr), member).Err()
}

func (c *client) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	return c.redisClient.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1)).Result()
}
