package tracker

import (
	"time"

	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/metrics"
)

type Option func(*Tracker)

// WithInterval overrides the poll cadence. Non-positive values are
// ignored.
func WithInterval(interval time.Duration) Option {
	return func(t *Tracker) {
		if interval > 0 {
			t.interval = interval
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		t.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(t *Tracker) {
		t.rec = r
	}
}
