package model

import (
	"fmt"
	"time"

	"subscription-billing/internal/domain"
)

type UserPlanStatus string

const (
	UserPlanStatusPendingPayment UserPlanStatus = "pending-payment"
	UserPlanStatusActive         UserPlanStatus = "active"
	UserPlanStatusTrial          UserPlanStatus = "trial"
	UserPlanStatusExpired        UserPlanStatus = "expired"
	UserPlanStatusCancelled      UserPlanStatus = "cancelled"
	UserPlanStatusSuspended      UserPlanStatus = "suspended"
)

// userPlanTransitions mirrors the payment table for the entitlement side.
// A cancelled plan can be re-purchased, which takes it back through
// pending-payment rather than resurrecting it directly.
var userPlanTransitions = map[UserPlanStatus][]UserPlanStatus{
	UserPlanStatusPendingPayment: {UserPlanStatusActive, UserPlanStatusTrial, UserPlanStatusCancelled, UserPlanStatusExpired},
	UserPlanStatusTrial:          {UserPlanStatusActive, UserPlanStatusExpired, UserPlanStatusCancelled, UserPlanStatusSuspended},
	UserPlanStatusActive:         {UserPlanStatusExpired, UserPlanStatusCancelled, UserPlanStatusSuspended},
	UserPlanStatusSuspended:      {UserPlanStatusActive, UserPlanStatusCancelled},
	UserPlanStatusExpired:        {UserPlanStatusActive},
	UserPlanStatusCancelled:      {UserPlanStatusPendingPayment},
}

func (s UserPlanStatus) CanTransition(to UserPlanStatus) bool {
	for _, t := range userPlanTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func (s UserPlanStatus) Valid() bool {
	_, ok := userPlanTransitions[s]
	return ok
}

// Entitled reports whether the plan currently grants access.
func (s UserPlanStatus) Entitled() bool {
	return s == UserPlanStatusActive || s == UserPlanStatusTrial
}

// UserPlan is the entitlement a payment buys: one user, one plan, a validity
// window. Activation picks `trial` when trialEndsAt is still in the future.
type UserPlan struct {
	ID     string
	UserID string
	PlanID string

	Status UserPlanStatus

	StartDate   time.Time
	EndDate     time.Time
	TrialEndsAt *time.Time

	AutoRenew     bool
	LastPaymentID *string
	PaymentMethod PaymentMethod

	CancelledAt        *time.Time
	CancellationReason *string

	Metadata map[string]interface{}

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (up *UserPlan) Validate() error {
	if up.UserID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if up.PlanID == "" {
		return fmt.Errorf("%w: plan id is required", domain.ErrValidation)
	}
	if !up.EndDate.After(up.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", domain.ErrValidation)
	}
	if !up.Status.Valid() {
		return fmt.Errorf("%w: unknown user plan status %q", domain.ErrValidation, up.Status)
	}
	return nil
}

// UserPlanPatch carries the columns a status transition touches. Metadata is
// merged into the stored value, never replaced.
type UserPlanPatch struct {
	Status UserPlanStatus

	EndDate       *time.Time
	AutoRenew     *bool
	LastPaymentID *string

	CancelledAt        *time.Time
	CancellationReason *string
	// ClearCancellation nulls cancelledAt/cancellationReason so an
	// activated record carries no leftover cancellation stamps.
	ClearCancellation bool

	Metadata map[string]interface{}
}
