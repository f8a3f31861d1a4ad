package adapter

import (
	"context"
	"time"
)

// EventDeduper remembers recently seen webhook events so a redelivered event
// is dropped before it reaches the state machine. Dedup is best-effort; the
// conditional updates underneath make redelivery safe even when the marker
// has expired.
type EventDeduper interface {
	// MarkOnce records the key and reports whether this call was the first
	// to see it within ttl.
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
