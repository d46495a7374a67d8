// Package observability provides a hook.Extension that records lifecycle
// metrics for dispatchers and queues through OpenTelemetry instruments.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/coalesce/hook"
)

// meterName is the instrumentation scope name for coalesce observability.
const meterName = "github.com/xraph/coalesce/observability"

// Compile-time interface checks.
var (
	_ hook.Extension     = (*MetricsExtension)(nil)
	_ hook.CallScheduled = (*MetricsExtension)(nil)
	_ hook.CallCoalesced = (*MetricsExtension)(nil)
	_ hook.CallFired     = (*MetricsExtension)(nil)
	_ hook.CallCancelled = (*MetricsExtension)(nil)
	_ hook.ItemEnqueued  = (*MetricsExtension)(nil)
	_ hook.ItemCompleted = (*MetricsExtension)(nil)
	_ hook.ItemSkipped   = (*MetricsExtension)(nil)
)

// MetricsExtension records lifecycle metrics. Register it on a
// hook.Registry shared by a dispatcher and/or queue to automatically track
// scheduling rates, coalescing effectiveness, execution counts and
// durations, and skip counts.
type MetricsExtension struct {
	callsScheduled metric.Int64Counter
	callsCoalesced metric.Int64Counter
	callsFired     metric.Int64Counter
	callsCancelled metric.Int64Counter
	itemsEnqueued  metric.Int64Counter
	itemsCompleted metric.Int64Counter
	itemsSkipped   metric.Int64Counter
	duration       metric.Float64Histogram
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. With no provider configured the instruments are noops.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the provided
// meter. This variant allows injecting a specific MeterProvider for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}

	// On error the OTel API returns noop instruments, so the extension
	// degrades gracefully.
	m.callsScheduled, _ = meter.Int64Counter("coalesce.call.scheduled",
		metric.WithDescription("Total debounced calls scheduled"))
	m.callsCoalesced, _ = meter.Int64Counter("coalesce.call.coalesced",
		metric.WithDescription("Total pending calls superseded by a newer schedule"))
	m.callsFired, _ = meter.Int64Counter("coalesce.call.fired",
		metric.WithDescription("Total debounced calls that fired"))
	m.callsCancelled, _ = meter.Int64Counter("coalesce.call.cancelled",
		metric.WithDescription("Total pending calls cancelled explicitly"))
	m.itemsEnqueued, _ = meter.Int64Counter("coalesce.item.enqueued",
		metric.WithDescription("Total items enqueued on serial queues"))
	m.itemsCompleted, _ = meter.Int64Counter("coalesce.item.completed",
		metric.WithDescription("Total queue items whose action ran"))
	m.itemsSkipped, _ = meter.Int64Counter("coalesce.item.skipped",
		metric.WithDescription("Total queue items discarded without running"))
	m.duration, _ = meter.Float64Histogram("coalesce.execution.duration",
		metric.WithDescription("Duration of executed actions in seconds"),
		metric.WithUnit("s"))

	return m
}

// Name implements hook.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

func statusAttr(err error) metric.MeasurementOption {
	status := "ok"
	if err != nil {
		status = "error"
	}
	return metric.WithAttributes(attribute.String("status", status))
}

// OnCallScheduled implements hook.CallScheduled.
func (m *MetricsExtension) OnCallScheduled(ctx context.Context, _ hook.CallEvent) error {
	m.callsScheduled.Add(ctx, 1)
	return nil
}

// OnCallCoalesced implements hook.CallCoalesced.
func (m *MetricsExtension) OnCallCoalesced(ctx context.Context, _ hook.CallEvent) error {
	m.callsCoalesced.Add(ctx, 1)
	return nil
}

// OnCallFired implements hook.CallFired.
func (m *MetricsExtension) OnCallFired(ctx context.Context, _ hook.CallEvent, elapsed time.Duration, err error) error {
	m.callsFired.Add(ctx, 1, statusAttr(err))
	m.duration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("source", "debounce")))
	return nil
}

// OnCallCancelled implements hook.CallCancelled.
func (m *MetricsExtension) OnCallCancelled(ctx context.Context, _ hook.CallEvent) error {
	m.callsCancelled.Add(ctx, 1)
	return nil
}

// OnItemEnqueued implements hook.ItemEnqueued.
func (m *MetricsExtension) OnItemEnqueued(ctx context.Context, _ hook.ItemEvent) error {
	m.itemsEnqueued.Add(ctx, 1)
	return nil
}

// OnItemCompleted implements hook.ItemCompleted.
func (m *MetricsExtension) OnItemCompleted(ctx context.Context, _ hook.ItemEvent, elapsed time.Duration, err error) error {
	m.itemsCompleted.Add(ctx, 1, statusAttr(err))
	m.duration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("source", "serial")))
	return nil
}

// OnItemSkipped implements hook.ItemSkipped.
func (m *MetricsExtension) OnItemSkipped(ctx context.Context, _ hook.ItemEvent) error {
	m.itemsSkipped.Add(ctx, 1)
	return nil
}
