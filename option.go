package onchaincommerce

import (
	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/metrics"
)

type Option func(*Dashboard)

func WithLogger(l logger.Logger) Option {
	return func(d *Dashboard) {
		d.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(d *Dashboard) {
		d.rec = r
	}
}
