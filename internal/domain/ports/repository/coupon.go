package repository

import (
	"context"

	"subscription-billing/internal/domain/model"
)

type CouponRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Coupon, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Coupon, error)

	// IncrementUsage bumps timesUsed atomically, deactivating the coupon in
	// the same statement when the bump reaches maxUses. It fails with a
	// coupon sentinel when the coupon is already inactive or used up.
	IncrementUsage(ctx context.Context, tx Tx, id string) error
}
