package repository

import (
	"context"

	"subscription-billing/internal/domain/model"
)

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	ListPublic(ctx context.Context, tx Tx) ([]*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
	// Delete soft-deactivates; the row stays for historic references.
	Delete(ctx context.Context, tx Tx, id string) error
}
