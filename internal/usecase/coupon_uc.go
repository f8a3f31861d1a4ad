package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ CouponUseCase = (*couponUC)(nil)

type CouponUseCase interface {
	Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error)
	// Validate checks a code against a plan and returns the coupon plus the
	// discount it yields on amount (cents). Failures are reported in a fixed
	// order: not found, usage cap, inactive, expired, not applicable.
	Validate(ctx context.Context, tx repository.Tx, code, planID string, amount int64) (*model.Coupon, int64, error)
	// Redeem bumps usage atomically; it is called inside the payment
	// creation transaction so an oversubscribed coupon rolls the whole
	// purchase back.
	Redeem(ctx context.Context, tx repository.Tx, couponID string) error
	ListActive(ctx context.Context) ([]*model.Coupon, error)
}

type couponUC struct {
	coupons repository.CouponRepository
}

func NewCouponUseCase(coupons repository.CouponRepository) *couponUC {
	return &couponUC{coupons: coupons}
}

func (u *couponUC) Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	c.Code = model.NormalizeCouponCode(c.Code)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if existing, err := u.coupons.FindByCode(ctx, nil, c.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: coupon code %q already exists", domain.ErrAlreadyExists, c.Code)
	}
	now := time.Now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.IsActive = true
	c.TimesUsed = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := u.coupons.Save(ctx, nil, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *couponUC) Validate(ctx context.Context, tx repository.Tx, code, planID string, amount int64) (*model.Coupon, int64, error) {
	c, err := u.coupons.FindByCode(ctx, tx, model.NormalizeCouponCode(code))
	if err != nil {
		return nil, 0, err
	}
	// the cap check comes first: redeeming the last use deactivates the
	// coupon, and the caller should hear "used up", not "inactive"
	if c.UsageCapReached() {
		return nil, 0, fmt.Errorf("coupon %q: %w", c.Code, domain.ErrCouponUsageCap)
	}
	if !c.IsActive {
		return nil, 0, fmt.Errorf("coupon %q: %w", c.Code, domain.ErrCouponInactive)
	}
	if c.ExpirationDate != nil && time.Now().After(*c.ExpirationDate) {
		return nil, 0, fmt.Errorf("coupon %q: %w", c.Code, domain.ErrCouponExpired)
	}
	if !c.AppliesTo(planID) {
		return nil, 0, fmt.Errorf("coupon %q: %w", c.Code, domain.ErrCouponNotApplicable)
	}
	return c, c.CalculateDiscount(amount), nil
}

func (u *couponUC) Redeem(ctx context.Context, tx repository.Tx, couponID string) error {
	return u.coupons.IncrementUsage(ctx, tx, couponID)
}

func (u *couponUC) ListActive(ctx context.Context) ([]*model.Coupon, error) {
	return u.coupons.ListActive(ctx, nil)
}
