package middleware

import (
	"context"
	"time"

	"github.com/hyp3rd/ewrap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/sectionprof"
	"github.com/hyp3rd/sectionprof/internal/telemetry/attrs"
)

// OTelMetricsHook emits one counter increment and one duration sample per completed region.
type OTelMetricsHook struct {
	regions   metric.Int64Counter
	durations metric.Float64Histogram
}

// NewOTelMetricsHook creates the instruments on meter.
func NewOTelMetricsHook(meter metric.Meter) (*OTelMetricsHook, error) {
	regions, err := meter.Int64Counter("sectionprof.regions",
		metric.WithDescription("Completed region measurements"))
	if err != nil {
		return nil, ewrap.Wrap(err, "create counter")
	}

	durations, err := meter.Float64Histogram("sectionprof.region.duration.ms",
		metric.WithDescription("Region wall-clock duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, ewrap.Wrap(err, "create histogram")
	}

	return &OTelMetricsHook{regions: regions, durations: durations}, nil
}

// RegionBegin is a no-op: metrics are only recorded for completed regions.
func (*OTelMetricsHook) RegionBegin(ctx context.Context, _ sectionprof.RegionInfo) context.Context {
	return ctx
}

// RegionEnd records the region's duration.
func (h *OTelMetricsHook) RegionEnd(ctx context.Context, info sectionprof.RegionInfo, elapsed time.Duration) {
	opt := metric.WithAttributes(
		attribute.String(attrs.AttrRegionName, info.Name),
		attribute.String(attrs.AttrRegionPath, info.PathString()),
		attribute.Int(attrs.AttrRegionDepth, info.Depth),
	)

	h.regions.Add(ctx, 1, opt)
	h.durations.Record(ctx, float64(elapsed)/float64(time.Millisecond), opt)
}
