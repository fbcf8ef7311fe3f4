package stats

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/docdao/docdao/domain"
)

// LogReporter implements [domain.StatsReporter] by writing each measurement
// to a structured logger, useful in development and tests.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter returns a [domain.StatsReporter] that logs measurements.
func NewLogReporter(options ...LogReporterOption) domain.StatsReporter {
	r := &LogReporter{
		logger: log.Default(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// LogReporterOption configures a [LogReporter].
type LogReporterOption func(*LogReporter)

// WithLogger sets the logger measurements are written to.
func WithLogger(logger *log.Logger) LogReporterOption {
	return func(r *LogReporter) {
		r.logger = logger
	}
}

// ReportTiming implements [domain.StatsReporter].
func (r *LogReporter) ReportTiming(key string, elapsed time.Duration) {
	r.logger.Debug("query timing", "key", key, "elapsed", elapsed)
}
