package distlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is already held by another owner.
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only when the stored token matches, so a
// slow holder cannot release a lease that has already expired and been
// re-acquired by someone else.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker acquires lease-based locks backed by Redis SET NX PX.
type Locker struct {
	client redis.Cmdable
}

// Lock is a single held lease. Release it when the guarded work is done;
// the lease expires on its own if the holder crashes.
type Lock struct {
	client redis.Cmdable
	key    string
	token  string
}

// NewLocker creates a Locker on top of the given Redis client.
func NewLocker(client redis.Cmdable) *Locker {
	return &Locker{client: client}
}

// Acquire takes the lease named by key for at most ttl. It does not block:
// if the lease is held elsewhere it returns ErrNotAcquired immediately.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return &Lock{client: l.client, key: key, token: token}, nil
}

// Release gives the lease back. Releasing an expired or stolen lease is a no-op.
func (lk *Lock) Release(ctx context.Context) error {
	return lk.client.Eval(ctx, releaseScript, []string{lk.key}, lk.token).Err()
}

// Key returns the lock key, for logging.
func (lk *Lock) Key() string {
	return lk.key
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
