package redis

import (
	"context"
	"time"

	"subscription-billing/internal/domain/ports/adapter"
)

var _ adapter.EventDeduper = (*eventDeduper)(nil)

// eventDeduper marks webhook events with SETNX so only the first delivery of
// a key within the TTL window proceeds.
type eventDeduper struct {
	client RedisClient
}

func NewEventDeduper(client RedisClient) *eventDeduper {
	return &eventDeduper{client: client}
}

func (d *eventDeduper) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return d.client.SetNX(ctx, key, 1, ttl)
}
