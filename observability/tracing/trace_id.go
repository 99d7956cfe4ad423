package tracing

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceID returns the trace id of the span in ctx. When tracing is disabled or
// ctx carries no span, a new UUID is returned so logs can still be correlated.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return uuid.NewString()
}
