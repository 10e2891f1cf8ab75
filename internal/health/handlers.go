// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/whyyagswhy/dealcalc-sub000/internal/common"
)

const defaultTimeout = 500 * time.Millisecond

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the process-wide readiness flag, cleared during shutdown so
// load balancers drain the instance.
func SetReady(v bool) {
	ready.Store(v)
}

// Probe checks one dependency.
type Probe struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Postgres probes a database pool.
func Postgres(p Pinger) Probe {
	return Probe{Name: "db", Timeout: defaultTimeout, Check: p.Ping}
}

// Redis probes a Redis client.
func Redis(c redis.UniversalClient) Probe {
	return Probe{Name: "redis", Timeout: 300 * time.Millisecond, Check: func(ctx context.Context) error {
		return c.Ping(ctx).Err()
	}}
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	probes []Probe
}

// NewHandler returns a Handler running probes on readiness checks.
func NewHandler(probes ...Probe) Handler {
	return Handler{probes: probes}
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes. Probes run concurrently.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
		return
	}

	var (
		mu     sync.Mutex
		status = make(map[string]string, len(h.probes))
		ok     = true
	)
	var g errgroup.Group
	for _, p := range h.probes {
		g.Go(func() error {
			result := "ok"
			if err := run(r.Context(), p); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			status[p.Name] = result
			if result != "ok" {
				ok = false
			}
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func run(ctx context.Context, p Probe) error {
	if p.Check == nil {
		return nil
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Check(ctx)
}
