package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Structured attribute keys every log line carries once a TracingHandler
// is wrapped around the base slog handler.
const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
)

// TracingHandler decorates an [slog.Handler] so every log record an
// editor instance emits — a file-open failure, a remote-open request, a
// job scheduler stall — carries the trace/span ID of whatever span was
// active when it was logged, plus static service/env/mode attributes.
// Correlating a log line back to the span that produced it is the whole
// point: "why did this buffer fail to load" needs the request that
// triggered it, not just the message text.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner, pre-attaching service, env, and appMode
// as top-level attributes so they survive any later WithGroup call rather
// than ending up nested under a group prefix.
func NewTracingHandler(inner slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	attrs := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	}

	if env != "" {
		attrs = append(attrs, slog.String(attrEnv, env))
	}

	return &TracingHandler{
		inner: inner.WithAttrs(attrs),
	}
}

// Enabled reports whether the wrapped handler would log at level.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle attaches the active span's trace/span ID to record, if any, then
// passes it through to the wrapped handler.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanContextFromContext(ctx)
	if span.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, span.TraceID().String()),
			slog.String(attrSpanID, span.SpanID().String()),
		)
	}

	if err := th.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs returns a TracingHandler whose wrapped handler carries attrs.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

// WithGroup returns a TracingHandler whose wrapped handler is scoped under
// a name group.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}
