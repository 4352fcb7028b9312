package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

// scriptedRedis evaluates the two Lua scripts the client sends in Go.
type scriptedRedis struct {
	values map[string]string
	hits   map[string]int64
	ttls   map[string]int64
}

func newScriptedRedis() *scriptedRedis {
	return &scriptedRedis{values: map[string]string{}, hits: map[string]int64{}, ttls: map[string]int64{}}
}

func (s *scriptedRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (s *scriptedRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, held := s.values[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	s.values[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (s *scriptedRedis) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	key := keys[0]
	switch script {
	case releaseScript:
		if s.values[key] != args[0] {
			return redis.NewCmdResult(int64(0), nil)
		}
		delete(s.values, key)
		return redis.NewCmdResult(int64(1), nil)
	case hitScript:
		s.hits[key]++
		if _, ok := s.ttls[key]; !ok {
			s.ttls[key] = args[0].(int64)
		}
		return redis.NewCmdResult(s.hits[key], nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
}

func TestClaimAndRelease(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newScriptedRedis()}
	key := IdempotencyKey("stripe-webhook", "cs_test_1")

	won, err := client.SetNX(ctx, key, "owner-a", time.Hour)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = client.SetNX(ctx, key, "owner-b", time.Hour)
	require.NoError(t, err)
	assert.False(t, won, "second claim must lose")

	released, err := client.DeleteIfValue(ctx, key, "owner-b")
	require.NoError(t, err)
	assert.False(t, released, "a non-owner cannot release")

	released, err = client.DeleteIfValue(ctx, key, "owner-a")
	require.NoError(t, err)
	assert.True(t, released)

	won, _ = client.SetNX(ctx, key, "owner-b", time.Hour)
	assert.True(t, won, "released key can be claimed again")
}

func TestHitCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	store := newScriptedRedis()
	client := &Client{cmd: store}
	key := RateLimitKey("payment", "user:buyer-uid")

	for want := int64(1); want <= 3; want++ {
		n, err := client.Hit(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, int64(60_000), store.ttls[key])

	_, err := client.Hit(ctx, key, 0)
	assert.Error(t, err)
}

func TestUninitializedClient(t *testing.T) {
	var client *Client
	ctx := context.Background()

	_, err := client.SetNX(ctx, "k", "v", time.Second)
	assert.ErrorIs(t, err, errNotInitialized)
	_, err = client.Hit(ctx, "k", time.Second)
	assert.ErrorIs(t, err, errNotInitialized)
	assert.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	assert.NoError(t, client.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "sf:idempotency:stripe-webhook:cs_1", IdempotencyKey("stripe-webhook", "cs_1"))
	assert.Equal(t, "sf:rate_limit:payment:ip:10.0.0.1", RateLimitKey("payment", "ip:10.0.0.1"))
	assert.Equal(t, "sf:lock:restore-unpaid-orders", LockKey("restore-unpaid-orders"))
	assert.Equal(t, "sf:idempotency:scope", IdempotencyKey("scope", " "), "blank parts are dropped")
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache:6380/2", PoolSize: 20, DB: 5})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB, "db from url wins")
	assert.Equal(t, 20, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 1, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)
}
