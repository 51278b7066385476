package metrics

import (
	"context"
	"time"
)

type pollFunc = func(ctx context.Context) error

// RecordPollerDuration wraps a poll method so every run is observed under
// the poller name and its outcome.
func RecordPollerDuration(name string, f pollFunc) pollFunc {
	return func(ctx context.Context) error {
		start := time.Now()
		err := f(ctx)
		pollerDurationHistogram.
			WithLabelValues(name, outcome(err != nil).String()).
			Observe(time.Since(start).Seconds())
		return err
	}
}
