package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingHooks opens an OpenTelemetry span for each route and journey
// computation. Spans come from the globally registered tracer provider, so
// without an SDK installed they are no-ops.
type TracingHooks struct {
	NoopRoutingHooks
	tracer trace.Tracer
}

// NewTracingHooks returns hooks using the "indoorroute" tracer.
func NewTracingHooks() *TracingHooks {
	return &TracingHooks{tracer: otel.Tracer("indoorroute")}
}

func (h *TracingHooks) OnRouteStart(ctx context.Context, floor, from, to string) context.Context {
	ctx, _ = h.tracer.Start(ctx, "engine.ComputeRoute",
		trace.WithAttributes(
			attribute.String("floor", floor),
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
	return ctx
}

func (h *TracingHooks) OnRouteComplete(ctx context.Context, _ string, nodeCount int, _ time.Duration, err error) {
	end(ctx, err, attribute.Int("nodes", nodeCount), attribute.Bool("found", nodeCount > 0))
}

func (h *TracingHooks) OnJourneyStart(ctx context.Context, fromFloor, toFloor, via string) context.Context {
	ctx, _ = h.tracer.Start(ctx, "engine.ComputeMultiFloorRoute",
		trace.WithAttributes(
			attribute.String("from_floor", fromFloor),
			attribute.String("to_floor", toFloor),
			attribute.String("via", via),
		),
	)
	return ctx
}

func (h *TracingHooks) OnJourneyComplete(ctx context.Context, _ string, stepCount int, _ time.Duration, err error) {
	end(ctx, err, attribute.Int("steps", stepCount))
}

func end(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attrs...)
	span.End()
}

var _ RoutingHooks = (*TracingHooks)(nil)
