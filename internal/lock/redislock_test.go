package lock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/whyyagswhy/dealcalc-sub000/internal/lock"
)

func newMutex(t *testing.T) (*lock.Mutex, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.New(client, 5*time.Millisecond), mr
}

func TestDoSerialisesHolders(t *testing.T) {
	mutex, _ := newMutex(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var (
		mu    sync.Mutex
		order []string
	)
	firstIn := make(chan struct{})
	releaseFirst := make(chan struct{})
	firstErr := make(chan error, 1)

	go func() {
		firstErr <- mutex.Do(ctx, "seed", time.Second, func(context.Context) error {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			close(firstIn)
			<-releaseFirst
			return nil
		})
	}()
	<-firstIn

	secondErr := make(chan error, 1)
	go func() {
		secondErr <- mutex.Do(ctx, "seed", time.Second, func(context.Context) error {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	require.Equal(t, []string{"first"}, order)
	mu.Unlock()

	close(releaseFirst)
	require.NoError(t, <-firstErr)
	require.NoError(t, <-secondErr)
	require.Equal(t, []string{"first", "second"}, order)
}

func TestDoReleasesOnError(t *testing.T) {
	mutex, mr := newMutex(t)
	boom := errors.New("boom")

	err := mutex.Do(context.Background(), "seed", time.Second, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("seed"))
}

func TestDoDoesNotReleaseForeignToken(t *testing.T) {
	mutex, mr := newMutex(t)

	err := mutex.Do(context.Background(), "seed", time.Second, func(context.Context) error {
		require.NoError(t, mr.Set("seed", "someone-else"))
		return nil
	})
	require.NoError(t, err)
	got, err := mr.Get("seed")
	require.NoError(t, err)
	require.Equal(t, "someone-else", got)
}

func TestDoHonoursContext(t *testing.T) {
	mutex, mr := newMutex(t)
	require.NoError(t, mr.Set("seed", "held"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	called := false
	err := mutex.Do(ctx, "seed", time.Second, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, called)
}

func TestDoRequiresClient(t *testing.T) {
	var m *lock.Mutex
	err := m.Do(context.Background(), "seed", time.Second, func(context.Context) error { return nil })
	require.ErrorIs(t, err, lock.ErrNotConfigured)

	err = lock.New(nil, 0).Do(context.Background(), "seed", time.Second, func(context.Context) error { return nil })
	require.ErrorIs(t, err, lock.ErrNotConfigured)
}
