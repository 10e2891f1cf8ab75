package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/whyyagswhy/dealcalc-sub000/internal/app"
	"github.com/whyyagswhy/dealcalc-sub000/internal/config"
	"github.com/whyyagswhy/dealcalc-sub000/internal/jobs"
	"github.com/whyyagswhy/dealcalc-sub000/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.Component(obs.NewLogger(cfg.LogFormat, cfg.LogLevel), "worker")
	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "dealcalc"), nil)

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracingConfig{
		ServiceName: "dealcalc-worker",
		Endpoint:    cfg.OTLPEndpoint,
		Exporter:    envOrDefault("OBS_TRACING_EXPORTER", ""),
		Environment: cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	deps, err := app.Open(startCtx, cfg, logger, app.Options{})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	handler, err := jobs.NewHandler(deps.Quotes, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise job handler")
	}

	srv := asynq.NewServerFromRedisClient(deps.Redis, asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		Queues:          map[string]int{jobs.DefaultQueue: 1},
		ShutdownTimeout: 10 * time.Second,
		Logger:          asynqLogger{logger: logger},
	})
	if err := srv.Start(jobs.NewServeMux(handler)); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}

	logger.Info().
		Int("concurrency", cfg.WorkerConcurrency).
		Dur("refresh_interval", cfg.SnapshotRefreshInterval).
		Msg("worker starting")
	jobs.Schedule(ctx, cfg.SnapshotRefreshInterval, deps.Enqueuer, logger)
	<-ctx.Done()

	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
