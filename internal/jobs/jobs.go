// Package jobs runs background maintenance for the reference snapshot on asynq.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
)

// TypeSnapshotRefresh reloads the reference snapshot from Postgres into Redis.
const TypeSnapshotRefresh = "snapshot:refresh"

// DefaultQueue is the asynq queue refresh tasks are sent to.
const DefaultQueue = "dealcalc"

const (
	defaultUniqueWindow = 30 * time.Second
	defaultMaxRetry     = 5
)

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Enqueuer schedules snapshot refreshes. Requests landing inside the unique
// window of a pending task collapse into it.
type Enqueuer struct {
	client       taskClient
	queue        string
	uniqueWindow time.Duration
	maxRetry     int
}

// EnqueuerOption customises an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithQueue routes tasks to queue.
func WithQueue(queue string) EnqueuerOption {
	return func(e *Enqueuer) {
		if queue != "" {
			e.queue = queue
		}
	}
}

// WithUniqueWindow sets how long duplicate refresh requests are folded together.
func WithUniqueWindow(d time.Duration) EnqueuerOption {
	return func(e *Enqueuer) {
		if d > 0 {
			e.uniqueWindow = d
		}
	}
}

// NewEnqueuer builds an Enqueuer sharing the given Redis connection.
func NewEnqueuer(rdb redis.UniversalClient, opts ...EnqueuerOption) *Enqueuer {
	return newEnqueuer(asynq.NewClientFromRedisClient(rdb), opts...)
}

func newEnqueuer(client taskClient, opts ...EnqueuerOption) *Enqueuer {
	e := &Enqueuer{
		client:       client,
		queue:        DefaultQueue,
		uniqueWindow: defaultUniqueWindow,
		maxRetry:     defaultMaxRetry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnqueueRefresh queues a snapshot refresh. It reports false without error
// when an identical task is already pending.
func (e *Enqueuer) EnqueueRefresh(ctx context.Context) (bool, error) {
	if e == nil || e.client == nil {
		return false, errors.New("jobs: enqueuer not configured")
	}
	task := asynq.NewTask(TypeSnapshotRefresh, nil)
	_, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(e.queue),
		asynq.MaxRetry(e.maxRetry),
		asynq.Unique(e.uniqueWindow),
	)
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("enqueue %s: %w", TypeSnapshotRefresh, err)
	}
	return true, nil
}

// Close releases the underlying client. The shared Redis connection is left open.
func (e *Enqueuer) Close() error {
	if e == nil || e.client == nil {
		return nil
	}
	return e.client.Close()
}
