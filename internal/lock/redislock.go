// Package lock serialises maintenance work across processes with a Redis key.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrNotConfigured is returned when the mutex has no Redis client.
var ErrNotConfigured = errors.New("lock: redis client not configured")

const (
	defaultTTL   = 30 * time.Second
	defaultRetry = 50 * time.Millisecond
)

// Compare-and-delete so a holder never releases a lock that expired and was
// taken by someone else.
var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// Mutex is a best-effort distributed mutex keyed by name.
type Mutex struct {
	client redis.UniversalClient
	retry  time.Duration
}

// New returns a Mutex polling every retry while the lock is held elsewhere.
func New(client redis.UniversalClient, retry time.Duration) *Mutex {
	if retry <= 0 {
		retry = defaultRetry
	}
	return &Mutex{client: client, retry: retry}
}

// Do runs fn while holding key. It blocks until the lock is acquired or ctx ends.
func (m *Mutex) Do(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if m == nil || m.client == nil {
		return ErrNotConfigured
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	token := uuid.NewString()

	for {
		ok, err := m.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			break
		}
		timer := time.NewTimer(m.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	defer m.release(key, token)
	return fn(ctx)
}

func (m *Mutex) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = releaseScript.Run(ctx, m.client, []string{key}, token).Err()
}
