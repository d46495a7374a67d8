package observability_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/xraph/coalesce/hook"
	"github.com/xraph/coalesce/id"
	"github.com/xraph/coalesce/observability"
)

func setupTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, mp
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s: expected Sum[int64]", name)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetricsExtension_CountsCallLifecycle(t *testing.T) {
	reader, mp := setupTestMeter()
	ext := observability.NewMetricsExtensionWithMeter(mp.Meter("test"))

	ctx := context.Background()
	ev := hook.CallEvent{ID: id.NewCallID(), Key: "search"}

	_ = ext.OnCallScheduled(ctx, ev)
	_ = ext.OnCallScheduled(ctx, ev)
	_ = ext.OnCallCoalesced(ctx, ev)
	_ = ext.OnCallFired(ctx, ev, 10*time.Millisecond, nil)
	_ = ext.OnCallCancelled(ctx, ev)

	if got := counterValue(t, reader, "coalesce.call.scheduled"); got != 2 {
		t.Errorf("scheduled = %d, want 2", got)
	}
	if got := counterValue(t, reader, "coalesce.call.coalesced"); got != 1 {
		t.Errorf("coalesced = %d, want 1", got)
	}
	if got := counterValue(t, reader, "coalesce.call.fired"); got != 1 {
		t.Errorf("fired = %d, want 1", got)
	}
	if got := counterValue(t, reader, "coalesce.call.cancelled"); got != 1 {
		t.Errorf("cancelled = %d, want 1", got)
	}
}

func TestMetricsExtension_CountsItemLifecycle(t *testing.T) {
	reader, mp := setupTestMeter()
	ext := observability.NewMetricsExtensionWithMeter(mp.Meter("test"))

	ctx := context.Background()
	ev := hook.ItemEvent{ID: id.NewItemID(), Name: "verify-receipt"}

	_ = ext.OnItemEnqueued(ctx, ev)
	_ = ext.OnItemEnqueued(ctx, ev)
	_ = ext.OnItemCompleted(ctx, ev, 5*time.Millisecond, nil)
	_ = ext.OnItemCompleted(ctx, ev, 5*time.Millisecond, errors.New("boom"))
	_ = ext.OnItemSkipped(ctx, ev)

	if got := counterValue(t, reader, "coalesce.item.enqueued"); got != 2 {
		t.Errorf("enqueued = %d, want 2", got)
	}
	if got := counterValue(t, reader, "coalesce.item.completed"); got != 2 {
		t.Errorf("completed = %d, want 2", got)
	}
	if got := counterValue(t, reader, "coalesce.item.skipped"); got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
}

func TestMetricsExtension_RegistersOnRegistry(t *testing.T) {
	reader, mp := setupTestMeter()
	ext := observability.NewMetricsExtensionWithMeter(mp.Meter("test"))

	reg := hook.NewRegistry(slog.Default())
	reg.Register(ext)

	reg.EmitCallScheduled(context.Background(), hook.CallEvent{ID: id.NewCallID(), Key: "k"})

	if got := counterValue(t, reader, "coalesce.call.scheduled"); got != 1 {
		t.Errorf("scheduled = %d, want 1", got)
	}
}
