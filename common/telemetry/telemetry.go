package telemetry

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/cruxdb/cruxd/common/logger"
)

// Telemetry exposes runtime profiling and counters over HTTP
type Telemetry struct {
	log         *logger.Logger
	pprofAddr   string
	metricsAddr string
	events      *expvar.Map
}

// New creates telemetry components
func New(pprofPort, metricsPort int, log *logger.Logger) *Telemetry {
	events, ok := expvar.Get("events").(*expvar.Map)
	if !ok {
		events = expvar.NewMap("events")
	}
	return &Telemetry{
		log:         log,
		pprofAddr:   fmt.Sprintf("localhost:%d", pprofPort),
		metricsAddr: fmt.Sprintf("localhost:%d", metricsPort),
		events:      events,
	}
}

// Start serves pprof and expvar endpoints until ctx is cancelled
func (t *Telemetry) Start(ctx context.Context) error {
	pprofMux := http.NewServeMux()
	pprofMux.HandleFunc("/debug/pprof/", pprof.Index)
	pprofMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	pprofMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	pprofMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	pprofMux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/debug/vars", expvar.Handler())

	t.serve(ctx, "pprof", t.pprofAddr, pprofMux)
	t.serve(ctx, "metrics", t.metricsAddr, metricsMux)

	return nil
}

func (t *Telemetry) serve(ctx context.Context, name, addr string, handler http.Handler) {
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		t.log.Info("telemetry server starting", "name", name, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error("telemetry server error", "name", name, "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			t.log.Warn("telemetry server shutdown", "name", name, "error", err)
		}
	}()
}

// RecordDuration records operation duration
func (t *Telemetry) RecordDuration(operation string, start time.Time) {
	duration := time.Since(start)
	t.events.Add(operation+"_count", 1)
	t.events.Add(operation+"_ms", duration.Milliseconds())
	t.log.Debug("operation completed",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	)
}

// RecordEvent increments a named counter
func (t *Telemetry) RecordEvent(event string) {
	t.events.Add(event, 1)
}
