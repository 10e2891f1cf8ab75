package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/whyyagswhy/dealcalc-sub000/internal/quote"
)

// Refresher reloads the reference snapshot.
type Refresher interface {
	RefreshSnapshot(ctx context.Context) (quote.Snapshot, error)
}

// Handler processes snapshot refresh tasks.
type Handler struct {
	refresher Refresher
	logger    zerolog.Logger
	duration  metric.Float64Histogram
}

// NewHandler wires a Handler around refresher.
func NewHandler(refresher Refresher, logger zerolog.Logger) (*Handler, error) {
	if refresher == nil {
		return nil, fmt.Errorf("jobs: refresher is required")
	}
	hist, err := otel.Meter("dealcalc/jobs").Float64Histogram(
		"dealcalc.snapshot.refresh.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of reference snapshot refresh tasks."),
	)
	if err != nil {
		return nil, fmt.Errorf("jobs: refresh histogram: %w", err)
	}
	return &Handler{refresher: refresher, logger: logger, duration: hist}, nil
}

// ProcessTask implements asynq.Handler.
func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	start := time.Now()
	snap, err := h.refresher.RefreshSnapshot(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.duration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		h.logger.Error().Err(err).Str("task", task.Type()).Msg("snapshot refresh failed")
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	h.logger.Info().
		Str("task", task.Type()).
		Int("thresholds", len(snap.Thresholds)).
		Int("products", len(snap.Catalog)).
		Dur("took", time.Since(start)).
		Msg("snapshot refreshed")
	return nil
}

// NewServeMux routes every task type this package defines to h.
func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeSnapshotRefresh, h)
	return mux
}
