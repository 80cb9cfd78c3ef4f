package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/sectionprof"
	"github.com/hyp3rd/sectionprof/internal/telemetry/attrs"
)

// OTelTracingHook opens a span for every region. Nested regions produce child spans
// because the span travels in the context returned by Begin.
type OTelTracingHook struct {
	tracer trace.Tracer
	// static attributes applied to all spans
	commonAttrs []attribute.KeyValue
}

// OTelTracingOption allows configuring the tracing hook.
type OTelTracingOption func(*OTelTracingHook)

// WithCommonAttributes sets attributes applied to all spans.
func WithCommonAttributes(attributes ...attribute.KeyValue) OTelTracingOption {
	return func(h *OTelTracingHook) { h.commonAttrs = append(h.commonAttrs, attributes...) }
}

// NewOTelTracingHook creates a tracing hook.
func NewOTelTracingHook(tracer trace.Tracer, opts ...OTelTracingOption) *OTelTracingHook {
	hook := &OTelTracingHook{tracer: tracer}
	for _, o := range opts {
		o(hook)
	}

	return hook
}

// RegionBegin starts a span named after the region.
func (h *OTelTracingHook) RegionBegin(ctx context.Context, info sectionprof.RegionInfo) context.Context {
	ctx, span := h.tracer.Start(ctx, info.Name, trace.WithSpanKind(trace.SpanKindInternal))
	if len(h.commonAttrs) > 0 {
		span.SetAttributes(h.commonAttrs...)
	}

	span.SetAttributes(
		attribute.String(attrs.AttrRegionPath, info.PathString()),
		attribute.Int(attrs.AttrRegionDepth, info.Depth),
	)

	return ctx
}

// RegionEnd ends the span started for the region.
func (*OTelTracingHook) RegionEnd(ctx context.Context, _ sectionprof.RegionInfo, _ time.Duration) {
	trace.SpanFromContext(ctx).End()
}
