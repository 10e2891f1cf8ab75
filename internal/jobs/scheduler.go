package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type refreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context) (bool, error)
}

// Schedule enqueues a refresh immediately and then every interval until ctx
// is cancelled.
func Schedule(ctx context.Context, interval time.Duration, enq refreshEnqueuer, logger zerolog.Logger) {
	if interval <= 0 || enq == nil {
		return
	}
	tick := func() {
		queued, err := enq.EnqueueRefresh(ctx)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("schedule snapshot refresh")
		case queued:
			logger.Debug().Msg("snapshot refresh queued")
		}
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
