// Package server exposes the optional diagnostics HTTP endpoint:
// Prometheus metrics and a liveness probe. The endpoint shuts down
// gracefully when the assessment context is cancelled, so an
// interrupted run still flushes in-flight scrapes.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/subnetscout/prescan/pkg/logging"
	"github.com/subnetscout/prescan/pkg/metrics"
)

// Diagnostics is a small HTTP server carrying /metrics and /healthz.
type Diagnostics struct {
	server       *http.Server
	handler      http.Handler
	logger       logging.Logger
	shutdownOnce sync.Once
}

// NewDiagnostics builds the endpoint for the given listen address.
func NewDiagnostics(addr string, registry *metrics.Registry, logger logging.Logger) *Diagnostics {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return &Diagnostics{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		handler: mux,
		logger:  logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully. It
// blocks; callers run it on its own goroutine alongside the
// assessment.
func (d *Diagnostics) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("diagnostics endpoint up", logging.String("addr", d.server.Addr))
		errCh <- d.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return d.Shutdown(5 * time.Second)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("diagnostics endpoint failed", logging.Error(err))
			return err
		}
		return nil
	}
}

// Shutdown drains in-flight requests within the timeout. Safe to call
// more than once.
func (d *Diagnostics) Shutdown(timeout time.Duration) error {
	var err error
	d.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err = d.server.Shutdown(ctx)
		d.logger.Info("diagnostics endpoint stopped")
	})
	return err
}
