// Package stats contains [domain.StatsReporter] implementations and the
// query-shape naming convention used for per-shape latency aggregation.
package stats

import (
	"fmt"
	"time"

	"github.com/docdao/docdao/domain"
)

// ShapeKey returns the metrics key for one query shape. Keys are stable
// across requests with identical criteria field sets regardless of values.
func ShapeKey(collection, signature string) string {
	return fmt.Sprintf("queries.shapes.%s.%s", collection, signature)
}

// Measure starts a timing span and returns its stop function. The stop
// function must run on every exit path, normally via defer.
func Measure(reporter domain.StatsReporter, key string) func() {
	start := time.Now()
	return func() {
		reporter.ReportTiming(key, time.Since(start))
	}
}

// NopReporter implements [domain.StatsReporter] discarding every measurement.
type NopReporter struct{}

// NewNopReporter returns the default, discarding [domain.StatsReporter].
func NewNopReporter() domain.StatsReporter {
	return NopReporter{}
}

// ReportTiming implements [domain.StatsReporter].
func (NopReporter) ReportTiming(string, time.Duration) {}
