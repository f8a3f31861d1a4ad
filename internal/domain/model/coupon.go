package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"subscription-billing/internal/domain"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// Coupon grants a discount on plan purchases. Codes are stored upper-cased
// and trimmed so lookups are case-insensitive.
type Coupon struct {
	ID            string
	Code          string
	DiscountType  DiscountType
	DiscountValue int64 // percent for percentage, cents for fixed_amount

	ExpirationDate *time.Time
	MaxUses        *int
	TimesUsed      int
	IsActive       bool

	// ApplicablePlanIDs empty means the coupon applies to every plan.
	ApplicablePlanIDs []string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeCouponCode maps user input onto the stored representation.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *Coupon) Validate() error {
	if NormalizeCouponCode(c.Code) == "" {
		return fmt.Errorf("%w: coupon code is required", domain.ErrValidation)
	}
	switch c.DiscountType {
	case DiscountTypePercentage:
		if c.DiscountValue <= 0 || c.DiscountValue > 100 {
			return fmt.Errorf("%w: percentage discount must be between 1 and 100", domain.ErrValidation)
		}
	case DiscountTypeFixedAmount:
		if c.DiscountValue <= 0 {
			return fmt.Errorf("%w: fixed discount must be positive", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", domain.ErrValidation, c.DiscountType)
	}
	if c.MaxUses != nil && *c.MaxUses <= 0 {
		return fmt.Errorf("%w: max uses must be positive", domain.ErrValidation)
	}
	return nil
}

// AppliesTo reports whether the coupon is usable against the given plan.
func (c *Coupon) AppliesTo(planID string) bool {
	if len(c.ApplicablePlanIDs) == 0 {
		return true
	}
	for _, id := range c.ApplicablePlanIDs {
		if id == planID {
			return true
		}
	}
	return false
}

// UsageCapReached reports whether the coupon has been used up.
func (c *Coupon) UsageCapReached() bool {
	return c.MaxUses != nil && c.TimesUsed >= *c.MaxUses
}

// CalculateDiscount returns the discount in cents for an amount in cents,
// rounded to the nearest cent and clamped to [0, amount].
func (c *Coupon) CalculateDiscount(amount int64) int64 {
	var discount int64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = int64(math.Round(float64(amount) * float64(c.DiscountValue) / 100))
	case DiscountTypeFixedAmount:
		discount = c.DiscountValue
	}
	if discount < 0 {
		return 0
	}
	if discount > amount {
		return amount
	}
	return discount
}
