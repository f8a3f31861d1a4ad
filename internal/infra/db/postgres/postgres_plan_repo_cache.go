package postgres

import (
	"context"
	"fmt"

	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/cache"
	"subscription-billing/internal/infra/metrics"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

const planListKey = "plans:public"

// planRepoCacheDecorator serves hot plan reads from an in-process TTL store.
// Transactional reads (tx != nil) always bypass the cache: write paths must
// see the row they are about to change.
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	store *cache.TTLStore
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, store *cache.TTLStore) repository.PlanRepository {
	return &planRepoCacheDecorator{inner: inner, store: store}
}

func planKey(id string) string { return fmt.Sprintf("plan:%s", id) }

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if tx != nil {
		metrics.IncCacheRequest("plan", "bypass")
		return d.inner.FindByID(ctx, tx, id)
	}
	if v, ok := d.store.Get(planKey(id)); ok {
		metrics.IncCacheRequest("plan", "hit")
		cached := *(v.(*model.Plan))
		return &cached, nil
	}
	metrics.IncCacheRequest("plan", "miss")
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	cp := *plan
	d.store.Set(planKey(id), &cp)
	return plan, nil
}

func (d *planRepoCacheDecorator) ListPublic(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	if tx != nil {
		metrics.IncCacheRequest("plan_list", "bypass")
		return d.inner.ListPublic(ctx, tx)
	}
	if v, ok := d.store.Get(planListKey); ok {
		metrics.IncCacheRequest("plan_list", "hit")
		src := v.([]*model.Plan)
		out := make([]*model.Plan, len(src))
		for i, p := range src {
			cp := *p
			out[i] = &cp
		}
		return out, nil
	}
	metrics.IncCacheRequest("plan_list", "miss")
	plans, err := d.inner.ListPublic(ctx, tx)
	if err != nil {
		return nil, err
	}
	stored := make([]*model.Plan, len(plans))
	for i, p := range plans {
		cp := *p
		stored[i] = &cp
	}
	d.store.Set(planListKey, stored)
	return plans, nil
}

// ListAll is an admin surface; it is not cached.
func (d *planRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	return d.inner.ListAll(ctx, tx)
}

// Writes invalidate after the database write lands; dropping the entries
// first would leave a window where a concurrent read re-caches the old row.
// A racing read can still cache pre-write state for at most one TTL.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	if err := d.inner.Save(ctx, tx, p); err != nil {
		return err
	}
	d.store.Delete(planKey(p.ID), planListKey)
	return nil
}

func (d *planRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if err := d.inner.Delete(ctx, tx, id); err != nil {
		return err
	}
	d.store.Delete(planKey(id), planListKey)
	return nil
}
