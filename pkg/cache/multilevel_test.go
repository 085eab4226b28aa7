package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiLevelCache(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	remote := NewMemoryCache(time.Minute, time.Minute)
	c := NewMultiLevelCache(local, remote, 30*time.Second)

	var got meta
	assert.ErrorIs(t, c.Get(ctx, "m", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "m", meta{ChainID: 2}, time.Minute))
	assert.Equal(t, 1, local.Len())
	assert.Equal(t, 1, remote.Len())

	// L1 被清掉后从 L2 读取并回写
	require.NoError(t, local.Delete(ctx, "m"))
	require.NoError(t, c.Get(ctx, "m", &got))
	assert.Equal(t, int64(2), got.ChainID)
	assert.Equal(t, 1, local.Len())

	require.NoError(t, c.Delete(ctx, "m"))
	assert.ErrorIs(t, c.Get(ctx, "m", &got), ErrCacheMiss)
}

func TestMultiLevelWriteBackUsesLocalTTL(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Hour, time.Hour)
	remote := NewMemoryCache(time.Hour, time.Hour)
	c := NewMultiLevelCache(local, remote, 50*time.Millisecond)

	require.NoError(t, remote.Set(ctx, "m", meta{ChainID: 9}, time.Hour))
	var got meta
	require.NoError(t, c.Get(ctx, "m", &got))
	require.NoError(t, local.Get(ctx, "m", &got))

	// 回写的 L1 条目按 localTTL 过期
	time.Sleep(150 * time.Millisecond)
	assert.ErrorIs(t, local.Get(ctx, "m", &got), ErrCacheMiss)
	require.NoError(t, c.Get(ctx, "m", &got))
	assert.Equal(t, int64(9), got.ChainID)
}

func TestRedisCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedisCache(client, "cita:")

	var got meta
	err := c.Get(context.Background(), "m", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	_, err = DialRedis(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
