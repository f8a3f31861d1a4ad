package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

// register queues collectors at init time; nothing touches the default
// registry until MustRegister runs from the composition root.
func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister flushes the queue into the default registry. Safe to call
// more than once; only the first call does anything.
func MustRegister() {
	registerOnce.Do(func() {
		if len(pending) > 0 {
			prometheus.MustRegister(pending...)
		}
	})
}
