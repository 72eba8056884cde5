package testutil

import (
	"context"
	"time"

	"github.com/campus-events/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

var _ xredis.Client = (*MockRedisClient)(nil)

type MockRedisClient struct {
	DelFunc                 func(ctx context.Context, keys ...string) error
	GetFunc                 func(ctx context.Context, key string) (string, error)
	SetFunc                 func(ctx context.Context, key, value string, ttl time.Duration) error
	GetObjFunc              func(ctx context.Context, key string, v any) error
	SetObjFunc              func(ctx context.Context, key string, v any, ttl time.Duration) error
	ZIncrByFunc             func(ctx context.Context, key string, incr int64, member string) error
	ZRevRangeWithScoresFunc func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}

	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	return "", xredis.ErrNotFound
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}

	return nil
}

func (m *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	if m.GetObjFunc != nil {
		return m.GetObjFunc(ctx, key, v)
	}

	return xredis.ErrNotFound
}

func (m *MockRedisClient) SetObj(ctx context.Context, key string, v any, ttl time.Duration) error {
	if m.SetObjFunc != nil {
		return m.SetObjFunc(ctx, key, v, ttl)
	}

	return nil
}

func (m *MockRedisClient) ZIncrBy(ctx context.Context, key string, incr int64, member string) error {
	if m.ZIncrByFunc != nil {
		return m.ZIncrByFunc(ctx, key, incr, member)
	}

	return nil
}

func (m *MockRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	if m.ZRevRangeWithScoresFunc != nil {
		return m.ZRevRangeWithScoresFunc(ctx, key, offset, limit)
	}

	return nil, nil
}
