package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Create(ctx context.Context, p *model.Plan) (*model.Plan, error)
	Update(ctx context.Context, p *model.Plan) (*model.Plan, error)
	// Delete soft-deactivates; existing entitlements keep running.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Plan, error)
	// GetByIDForUpdate reads through the given transaction, bypassing any
	// caching decorator; write paths use it.
	GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
	ListPublic(ctx context.Context) ([]*model.Plan, error)
	ListAll(ctx context.Context) ([]*model.Plan, error)
}

type planUC struct {
	plans repository.PlanRepository
}

func NewPlanUseCase(plans repository.PlanRepository) *planUC {
	return &planUC{plans: plans}
}

func (u *planUC) Create(ctx context.Context, p *model.Plan) (*model.Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := u.plans.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *planUC) Update(ctx context.Context, p *model.Plan) (*model.Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cur, err := u.plans.FindByID(ctx, nil, p.ID)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now()
	if err := u.plans.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *planUC) Delete(ctx context.Context, id string) error {
	return u.plans.Delete(ctx, nil, id)
}

func (u *planUC) GetByID(ctx context.Context, id string) (*model.Plan, error) {
	return u.plans.FindByID(ctx, nil, id)
}

func (u *planUC) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	return u.plans.FindByID(ctx, tx, id)
}

func (u *planUC) ListPublic(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListPublic(ctx, nil)
}

func (u *planUC) ListAll(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListAll(ctx, nil)
}
