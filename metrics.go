package assetgo

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/assetgo/asset"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    loads    *prometheus.CounterVec
//	    loadTime *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordLoad(tag string, d time.Duration, err error) {
//	    p.loads.WithLabelValues(tag, strconv.FormatBool(err == nil)).Inc()
//	    p.loadTime.WithLabelValues(tag).Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordLoad is called once per finished load request, sync or async.
	// duration spans the whole pipeline, err is nil if successful.
	RecordLoad(tag string, duration time.Duration, err error)

	// RecordFree is called after a reconciliation pass with the number of
	// assets of one type whose last strong handle was released.
	RecordFree(tag string, count int)

	// RecordReconcile is called after every reconciliation pass.
	RecordReconcile(events, freed int, duration time.Duration)

	// RecordTypeMismatch is called when a store drops a payload of the wrong type.
	RecordTypeMismatch(tag string)
}

var _ asset.Metrics = MetricsCollector(nil)

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordFree(string, int)                  {}
func (NoopMetricsCollector) RecordReconcile(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordTypeMismatch(string)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount           atomic.Int64
	LoadErrors          atomic.Int64
	LoadTotalNanos      atomic.Int64
	FreeCount           atomic.Int64
	ReconcileCount      atomic.Int64
	ReconcileEvents     atomic.Int64
	ReconcileTotalNanos atomic.Int64
	TypeMismatches      atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ string, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(_ string, count int) {
	b.FreeCount.Add(int64(count))
}

// RecordReconcile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReconcile(events, _ int, duration time.Duration) {
	b.ReconcileCount.Add(1)
	b.ReconcileEvents.Add(int64(events))
	b.ReconcileTotalNanos.Add(duration.Nanoseconds())
}

// RecordTypeMismatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTypeMismatch(string) {
	b.TypeMismatches.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:         b.LoadCount.Load(),
		LoadErrors:        b.LoadErrors.Load(),
		LoadAvgNanos:      avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		FreeCount:         b.FreeCount.Load(),
		ReconcileCount:    b.ReconcileCount.Load(),
		ReconcileEvents:   b.ReconcileEvents.Load(),
		ReconcileAvgNanos: avg(b.ReconcileTotalNanos.Load(), b.ReconcileCount.Load()),
		TypeMismatches:    b.TypeMismatches.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount         int64
	LoadErrors        int64
	LoadAvgNanos      int64
	FreeCount         int64
	ReconcileCount    int64
	ReconcileEvents   int64
	ReconcileAvgNanos int64
	TypeMismatches    int64
}
