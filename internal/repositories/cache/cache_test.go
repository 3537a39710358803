package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/repositories/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := cache.NewLRU(4, time.Minute)

	_, ok := c.Get(ctx, "bob")
	assert.False(t, ok)

	c.Set(ctx, "bob", domain.NewPermissionSet("reimbursement:approve:low:1"))
	set, ok := c.Get(ctx, "bob")
	require.True(t, ok)
	assert.True(t, set.Has("reimbursement:approve:low:1"))

	c.Invalidate(ctx, "bob")
	_, ok = c.Get(ctx, "bob")
	assert.False(t, ok)
}

func TestLRU_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	c := cache.NewLRU(4, 20*time.Millisecond)
	c.Set(ctx, "bob", domain.NewPermissionSet("x"))

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "bob")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := cache.NewLRU(2, time.Minute)
	c.Set(ctx, "a", domain.NewPermissionSet("1"))
	c.Set(ctx, "b", domain.NewPermissionSet("2"))
	c.Get(ctx, "a")
	c.Set(ctx, "c", domain.NewPermissionSet("3"))

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

// fakeRedis records calls against a map; failing forces every call to error.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failing bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

var errDown = errors.New("dial tcp: connection refused")

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewStringResult("", errDown)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewStatusResult("", errDown)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewIntResult(0, errDown)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedis_RoundTripWithTTL(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	c := cache.NewRedis(client, 30*time.Second)

	c.Set(ctx, "carol", domain.NewPermissionSet("b", "a"))
	assert.Equal(t, 30*time.Second, client.ttls["approvals:perms:carol"])

	set, ok := c.Get(ctx, "carol")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, set.Codes())

	c.Invalidate(ctx, "carol")
	_, ok = c.Get(ctx, "carol")
	assert.False(t, ok)
}

func TestRedis_FailureIsAMiss(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	c := cache.NewRedis(client, time.Minute)
	c.Set(ctx, "carol", domain.NewPermissionSet("a"))

	client.failing = true
	_, ok := c.Get(ctx, "carol")
	assert.False(t, ok)
	assert.NotPanics(t, func() { c.Invalidate(ctx, "carol") })
}

func TestRedis_MalformedEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	client.data["approvals:perms:dave"] = "{not json"
	c := cache.NewRedis(client, time.Minute)

	_, ok := c.Get(ctx, "dave")
	assert.False(t, ok)
	assert.NotContains(t, client.data, "approvals:perms:dave")
}
