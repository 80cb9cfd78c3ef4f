package middleware

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/longbridgeapp/assert"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/sectionprof"
	"github.com/hyp3rd/sectionprof/internal/telemetry/attrs"
)

func TestLoggingHook_LogsBoundaries(t *testing.T) {
	var buf bytes.Buffer

	prof := sectionprof.New(sectionprof.WithHooks(NewLoggingHook(log.NewLogfmtLogger(&buf))))

	prof.Measure(context.Background(), "outer", func(ctx context.Context) {
		prof.Measure(ctx, "inner", func(context.Context) {})
	})

	out := buf.String()
	assert.True(t, strings.Contains(out, `msg="region begin" region=outer depth=0`))
	assert.True(t, strings.Contains(out, `msg="region begin" region=outer/inner depth=1`))
	assert.True(t, strings.Contains(out, `msg="region end" region=outer/inner`))
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestOTelTracingHook_NestedSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prof := sectionprof.New(sectionprof.WithHooks(NewOTelTracingHook(provider.Tracer("test"))))

	prof.Measure(context.Background(), "outer", func(ctx context.Context) {
		assert.True(t, trace.SpanContextFromContext(ctx).IsValid())

		prof.Measure(ctx, "inner", func(context.Context) {})
	})

	ended := recorder.Ended()
	assert.Equal(t, 2, len(ended))

	inner, outer := ended[0], ended[1]
	assert.Equal(t, "inner", inner.Name())
	assert.Equal(t, "outer", outer.Name())
	assert.Equal(t, outer.SpanContext().SpanID(), inner.Parent().SpanID())
	assert.False(t, outer.Parent().IsValid())

	assert.Equal(t, "outer/inner", spanAttr(inner.Attributes(), attrs.AttrRegionPath))
	assert.Equal(t, "outer", spanAttr(outer.Attributes(), attrs.AttrRegionPath))
}

func spanAttr(kvs []attribute.KeyValue, key string) string {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}

	return ""
}

func TestOTelMetricsHook_RecordsCompletedRegions(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	hook, err := NewOTelMetricsHook(provider.Meter("test"))
	assert.NoError(t, err)

	prof := sectionprof.New(sectionprof.WithHooks(hook))

	prof.Measure(context.Background(), "outer", func(ctx context.Context) {
		prof.Measure(ctx, "inner", func(context.Context) {})
		prof.Measure(ctx, "inner", func(context.Context) {})
	})

	// a region that never ends records nothing
	_, pending := prof.Begin(context.Background(), "pending")

	var collected metricdata.ResourceMetrics
	assert.NoError(t, reader.Collect(context.Background(), &collected))

	counts := map[string]int64{}
	samples := map[string]uint64{}

	for _, scope := range collected.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				assert.Equal(t, "sectionprof.regions", m.Name)

				for _, dp := range data.DataPoints {
					counts[pathOf(t, dp.Attributes)] += dp.Value
				}
			case metricdata.Histogram[float64]:
				assert.Equal(t, "sectionprof.region.duration.ms", m.Name)

				for _, dp := range data.DataPoints {
					samples[pathOf(t, dp.Attributes)] += dp.Count
				}
			}
		}
	}

	assert.Equal(t, map[string]int64{"outer": 1, "outer/inner": 2}, counts)
	assert.Equal(t, map[string]uint64{"outer": 1, "outer/inner": 2}, samples)

	pending.End()
}

func pathOf(t *testing.T, set attribute.Set) string {
	t.Helper()

	value, ok := set.Value(attribute.Key(attrs.AttrRegionPath))
	assert.True(t, ok)

	return value.AsString()
}
