package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DiagnosticsServer exposes /healthz, /readyz, and /metrics over HTTP.
// It is started only for a long-running editor instance (§6): the process
// other invocations' --try-remote and remote-open requests land on still
// needs to be introspectable even though it has no attached terminal beyond
// its own.
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
}

// NewDiagnosticsServer starts an HTTP server at addr with health, readiness,
// and Prometheus endpoints, instrumented with a request span/log per call
// and RED metrics keyed by route. readyChecks are run by /readyz; a nil
// tracer/logger skips request tracing, a nil meter skips RED metrics.
func NewDiagnosticsServer(addr string, tracer trace.Tracer, logger *slog.Logger, meter metric.Meter, readyChecks ...ReadyCheck) (*DiagnosticsServer, error) {
	mux := http.NewServeMux()

	mux.Handle("/healthz", routeHandler("healthz", HealthHandler(), meter))
	mux.Handle("/readyz", routeHandler("readyz", ReadyHandler(readyChecks...), meter))

	metricsHandler, err := PrometheusHandler()
	if err != nil {
		return nil, fmt.Errorf("create prometheus handler: %w", err)
	}

	mux.Handle("/metrics", routeHandler("metrics", metricsHandler, meter))

	var handler http.Handler = mux
	if tracer != nil && logger != nil {
		handler = HTTPMiddleware(tracer, logger, mux)
	}

	var lc net.ListenConfig

	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: handler}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{server: srv, listener: listener}, nil
}

// routeHandler wraps next with RED metrics for op, recorded against meter.
// Returns next unchanged when meter is nil.
func routeHandler(op string, next http.Handler, meter metric.Meter) http.Handler {
	if meter == nil {
		return next
	}

	red, err := NewREDMetrics(meter)
	if err != nil {
		slog.Warn("diagnostics: RED metrics unavailable", "op", op, "error", err)
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := red.TrackInflight(r.Context(), op)
		defer done()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := "ok"
		if sw.statusCode >= httpStatusServerError {
			status = statusError
		}

		red.RecordRequest(r.Context(), op, status, time.Since(start))
	})
}

// Addr returns the address the server is listening on.
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Close gracefully shuts down the diagnostics server.
func (d *DiagnosticsServer) Close() error {
	if err := d.server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutdown diagnostics server: %w", err)
	}

	return nil
}
