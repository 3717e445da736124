package metrics

import (
	"context"
	"time"
)

// nopBusinessMetrics discards every record. Used where metrics are not wired,
// such as tests.
type nopBusinessMetrics struct{}

// NewNopBusinessMetrics creates a BusinessMetrics that records nothing.
func NewNopBusinessMetrics() BusinessMetrics {
	return nopBusinessMetrics{}
}

func (nopBusinessMetrics) RecordOperation(context.Context, string, string) {}

func (nopBusinessMetrics) RecordDuration(context.Context, string, time.Duration, string) {}

func (nopBusinessMetrics) RecordCacheEvent(context.Context, string) {}

func (nopBusinessMetrics) RecordCacheSize(context.Context, int64) {}
