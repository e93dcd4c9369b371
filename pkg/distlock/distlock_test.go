package distlock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis keeps the lock keys in memory. Only SetNX and Eval are
// implemented, which is all the locker issues.
type fakeRedis struct {
	redis.Cmdable
	store map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: map[string]string{}}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, held := f.store[key]; held {
		cmd.SetVal(false)
		return cmd
	}
	f.store[key] = fmt.Sprint(value)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if len(keys) == 1 && len(args) == 1 && f.store[keys[0]] == fmt.Sprint(args[0]) {
		delete(f.store, keys[0])
		cmd.SetVal(int64(1))
		return cmd
	}
	cmd.SetVal(int64(0))
	return cmd
}

func TestAcquireAndRelease(t *testing.T) {
	client := newFakeRedis()
	locker := NewLocker(client)

	lock, err := locker.Acquire(context.Background(), "lease:cleanup", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "lease:cleanup", lock.Key())
	assert.Contains(t, client.store, "lease:cleanup")

	require.NoError(t, lock.Release(context.Background()))
	assert.NotContains(t, client.store, "lease:cleanup")

	// The lease is free again.
	_, err = locker.Acquire(context.Background(), "lease:cleanup", time.Minute)
	assert.NoError(t, err)
}

func TestAcquireHeldElsewhere(t *testing.T) {
	client := newFakeRedis()
	locker := NewLocker(client)

	_, err := locker.Acquire(context.Background(), "lease:cleanup", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), "lease:cleanup", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestReleaseAfterExpiryKeepsNewHolder(t *testing.T) {
	client := newFakeRedis()
	locker := NewLocker(client)

	stale, err := locker.Acquire(context.Background(), "lease:cleanup", time.Minute)
	require.NoError(t, err)

	// The lease expired and another worker took it over.
	delete(client.store, "lease:cleanup")
	current, err := locker.Acquire(context.Background(), "lease:cleanup", time.Minute)
	require.NoError(t, err)

	// The stale holder's release must not delete the new holder's lease.
	require.NoError(t, stale.Release(context.Background()))
	assert.Contains(t, client.store, "lease:cleanup")

	require.NoError(t, current.Release(context.Background()))
	assert.NotContains(t, client.store, "lease:cleanup")
}

func TestTokensAreUnique(t *testing.T) {
	client := newFakeRedis()
	locker := NewLocker(client)

	first, err := locker.Acquire(context.Background(), "lease:a", time.Minute)
	require.NoError(t, err)
	second, err := locker.Acquire(context.Background(), "lease:b", time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, client.store[first.Key()], client.store[second.Key()])
}
