package asset

import "time"

// Metrics receives operational measurements from the server, stores and the
// loading queue. Implementations must be safe for concurrent use.
type Metrics interface {
	RecordLoad(tag string, duration time.Duration, err error)
	RecordFree(tag string, count int)
	RecordReconcile(events, freed int, duration time.Duration)
	RecordTypeMismatch(tag string)
}

type noopMetrics struct{}

func (noopMetrics) RecordLoad(string, time.Duration, error) {}
func (noopMetrics) RecordFree(string, int)                  {}
func (noopMetrics) RecordReconcile(int, int, time.Duration) {}
func (noopMetrics) RecordTypeMismatch(string)               {}
