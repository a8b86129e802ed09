package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestThrottle(t *testing.T, max int) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, max, 15*time.Minute), mr
}

func TestLoginThrottle_BlocksAfterMaxFailures(t *testing.T) {
	th, _ := setupTestThrottle(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := th.Allow(ctx, "a@x.com")
		require.NoError(t, err)
		require.True(t, ok, "attempt %d", i+1)
		require.NoError(t, th.RecordFailure(ctx, "a@x.com"))
	}

	ok, err := th.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = th.Allow(ctx, "b@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_KeyIsHashedAndExpires(t *testing.T) {
	th, mr := setupTestThrottle(t, 3)
	ctx := context.Background()

	require.NoError(t, th.RecordFailure(ctx, "a@x.com"))
	require.NoError(t, th.RecordFailure(ctx, "a@x.com"))

	k := key("a@x.com")
	assert.NotContains(t, k, "a@x.com")
	assert.Len(t, k, len(keyPrefix)+64)

	val, err := mr.Get(k)
	require.NoError(t, err)
	assert.Equal(t, "2", val)
	assert.Equal(t, 15*time.Minute, mr.TTL(k))

	mr.FastForward(16 * time.Minute)
	ok, err := th.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_Reset(t *testing.T) {
	th, mr := setupTestThrottle(t, 1)
	ctx := context.Background()

	require.NoError(t, th.RecordFailure(ctx, "a@x.com"))
	ok, _ := th.Allow(ctx, "a@x.com")
	require.False(t, ok)

	require.NoError(t, th.Reset(ctx, "a@x.com"))
	assert.False(t, mr.Exists(key("a@x.com")))
	ok, err := th.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_Disabled(t *testing.T) {
	ctx := context.Background()
	var nilThrottle *LoginThrottle

	for _, th := range []*LoginThrottle{nilThrottle, New(nil, 5, time.Minute)} {
		ok, err := th.Allow(ctx, "a@x.com")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, th.RecordFailure(ctx, "a@x.com"))
		assert.NoError(t, th.Reset(ctx, "a@x.com"))
	}

	th, mr := setupTestThrottle(t, 0)
	require.NoError(t, th.RecordFailure(ctx, "a@x.com"))
	assert.False(t, mr.Exists(key("a@x.com")))
}

func TestLoginThrottle_RedisDown(t *testing.T) {
	th, mr := setupTestThrottle(t, 3)
	mr.Close()

	_, err := th.Allow(context.Background(), "a@x.com")
	assert.Error(t, err)
}
