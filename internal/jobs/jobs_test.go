package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/whyyagswhy/dealcalc-sub000/internal/approval"
	"github.com/whyyagswhy/dealcalc-sub000/internal/productname"
	"github.com/whyyagswhy/dealcalc-sub000/internal/quote"
)

type stubClient struct {
	mu     sync.Mutex
	tasks  []*asynq.Task
	opts   [][]asynq.Option
	err    error
	closed bool
}

func (c *stubClient) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	c.opts = append(c.opts, opts)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (c *stubClient) Close() error {
	c.closed = true
	return nil
}

func (c *stubClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

type stubRefresher struct {
	calls int
	snap  quote.Snapshot
	err   error
}

func (r *stubRefresher) RefreshSnapshot(context.Context) (quote.Snapshot, error) {
	r.calls++
	return r.snap, r.err
}

func optionValues(opts []asynq.Option) map[asynq.OptionType]any {
	out := make(map[asynq.OptionType]any, len(opts))
	for _, o := range opts {
		out[o.Type()] = o.Value()
	}
	return out
}

func TestEnqueueRefreshSetsOptions(t *testing.T) {
	client := &stubClient{}
	enq := newEnqueuer(client, WithQueue("reference"), WithUniqueWindow(time.Minute))

	queued, err := enq.EnqueueRefresh(context.Background())
	require.NoError(t, err)
	require.True(t, queued)
	require.Len(t, client.tasks, 1)
	require.Equal(t, TypeSnapshotRefresh, client.tasks[0].Type())

	values := optionValues(client.opts[0])
	require.Equal(t, "reference", values[asynq.QueueOpt])
	require.Equal(t, time.Minute, values[asynq.UniqueOpt])
	require.Equal(t, defaultMaxRetry, values[asynq.MaxRetryOpt])
}

func TestEnqueueRefreshDefaults(t *testing.T) {
	client := &stubClient{}
	enq := newEnqueuer(client, WithQueue(""), WithUniqueWindow(0))

	_, err := enq.EnqueueRefresh(context.Background())
	require.NoError(t, err)
	values := optionValues(client.opts[0])
	require.Equal(t, DefaultQueue, values[asynq.QueueOpt])
	require.Equal(t, defaultUniqueWindow, values[asynq.UniqueOpt])
}

func TestEnqueueRefreshDuplicateIsNotAnError(t *testing.T) {
	enq := newEnqueuer(&stubClient{err: asynq.ErrDuplicateTask})
	queued, err := enq.EnqueueRefresh(context.Background())
	require.NoError(t, err)
	require.False(t, queued)
}

func TestEnqueueRefreshWrapsFailures(t *testing.T) {
	boom := errors.New("redis down")
	enq := newEnqueuer(&stubClient{err: boom})
	_, err := enq.EnqueueRefresh(context.Background())
	require.ErrorIs(t, err, boom)

	var nilEnq *Enqueuer
	_, err = nilEnq.EnqueueRefresh(context.Background())
	require.Error(t, err)
	require.NoError(t, nilEnq.Close())
}

func TestEnqueuerClose(t *testing.T) {
	client := &stubClient{}
	require.NoError(t, newEnqueuer(client).Close())
	require.True(t, client.closed)
}

func TestHandlerProcessTask(t *testing.T) {
	ref := &stubRefresher{snap: quote.Snapshot{
		Thresholds: []approval.DiscountThreshold{{ProductName: "Sales Cloud", QtyMin: 1, QtyMax: 10}},
		Catalog:    []productname.PriceBookProduct{{Category: "Sales Cloud"}},
	}}
	h, err := NewHandler(ref, zerolog.Nop())
	require.NoError(t, err)

	mux := NewServeMux(h)
	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(TypeSnapshotRefresh, nil)))
	require.Equal(t, 1, ref.calls)

	require.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask("unknown:task", nil)))
	require.Equal(t, 1, ref.calls)
}

func TestHandlerProcessTaskError(t *testing.T) {
	boom := errors.New("store offline")
	h, err := NewHandler(&stubRefresher{err: boom}, zerolog.Nop())
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), asynq.NewTask(TypeSnapshotRefresh, nil))
	require.ErrorIs(t, err, boom)
}

func TestNewHandlerRequiresRefresher(t *testing.T) {
	_, err := NewHandler(nil, zerolog.Nop())
	require.Error(t, err)
}

func TestScheduleEnqueuesUntilCancelled(t *testing.T) {
	client := &stubClient{}
	enq := newEnqueuer(client)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Schedule(ctx, 5*time.Millisecond, enq, zerolog.Nop())
		close(done)
	}()

	require.Eventually(t, func() bool { return client.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("schedule did not stop after cancel")
	}
}

func TestScheduleIgnoresNonPositiveInterval(t *testing.T) {
	client := &stubClient{}
	Schedule(context.Background(), 0, newEnqueuer(client), zerolog.Nop())
	require.Zero(t, client.count())
}
