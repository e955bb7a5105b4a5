package metrics

import "time"

// Recorder receives operational counters and latencies from the
// commerce client and charge tracker.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
