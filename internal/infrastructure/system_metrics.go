package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records a snapshot of Go runtime usage at the end of a run
type RuntimeMetrics struct {
	heapAlloc  metric.Int64Gauge
	totalAlloc metric.Int64Gauge
	gcCount    metric.Int64Gauge
	wallTime   metric.Float64Gauge
}

// RuntimeStats holds the values of one snapshot
type RuntimeStats struct {
	HeapAlloc  int64
	TotalAlloc int64
	GCCount    uint32
	WallTime   time.Duration
}

// NewRuntimeMetrics registers the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	heapAlloc, err := meter.Int64Gauge(
		"fixture_runtime_heap_alloc",
		metric.WithDescription("Heap bytes in use at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"fixture_runtime_total_alloc",
		metric.WithDescription("Cumulative heap bytes allocated during the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"fixture_runtime_gc_count",
		metric.WithDescription("Completed garbage collections"),
	)
	if err != nil {
		return nil, err
	}

	wallTime, err := meter.Float64Gauge(
		"fixture_run_wall_time",
		metric.WithDescription("Wall clock duration of the run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		heapAlloc:  heapAlloc,
		totalAlloc: totalAlloc,
		gcCount:    gcCount,
		wallTime:   wallTime,
	}, nil
}

// Collect records a snapshot relative to startTime and returns it
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &RuntimeStats{
		HeapAlloc:  int64(memStats.HeapAlloc),
		TotalAlloc: int64(memStats.TotalAlloc),
		GCCount:    memStats.NumGC,
		WallTime:   time.Since(startTime),
	}

	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.wallTime.Record(ctx, stats.WallTime.Seconds())

	return stats
}

// LogValue implements slog.LogValuer
func (s *RuntimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("heap_alloc_mb", s.HeapAlloc/1024/1024),
		slog.Int64("total_alloc_mb", s.TotalAlloc/1024/1024),
		slog.Int("gc_count", int(s.GCCount)),
		slog.Duration("wall_time", s.WallTime),
	)
}
