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
var _ UserPlanUseCase = (*userPlanUC)(nil)

type UserPlanUseCase interface {
	// Create opens an entitlement in pending-payment covering the plan's
	// duration from now.
	Create(ctx context.Context, tx repository.Tx, userID string, plan *model.Plan, paymentMethod model.PaymentMethod, autoRenew bool, trialEndsAt *time.Time) (*model.UserPlan, error)
	// Activate moves pending-payment (or expired, on renewal) to active, or
	// to trial when trialEndsAt is still in the future. Losing the
	// conditional update to a concurrent activator is a benign no-op.
	Activate(ctx context.Context, tx repository.Tx, id string, lastPaymentID string) (*model.UserPlan, error)
	Cancel(ctx context.Context, tx repository.Tx, id, reason string) (*model.UserPlan, error)
	Suspend(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error)
	Resume(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error)
	// Renew extends the validity window from max(endDate, now) by the
	// plan's duration and forces the status back to active.
	Renew(ctx context.Context, tx repository.Tx, id string, plan *model.Plan, lastPaymentID string) (*model.UserPlan, error)
	Expire(ctx context.Context, id string) (*model.UserPlan, error)
	// ExpireDue sweeps every overdue non-auto-renewing entitlement in one
	// conditional statement; safe to run from overlapping schedules.
	ExpireDue(ctx context.Context, now time.Time) (repository.SweepResult, error)
	UpdateMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
	GetByID(ctx context.Context, id string) (*model.UserPlan, error)
	// GetForUpdate reads through the given transaction.
	GetForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error)
	FindByUser(ctx context.Context, userID string) ([]*model.UserPlan, error)
	UserHasActivePlan(ctx context.Context, userID string) (bool, error)
}

type userPlanUC struct {
	userPlans repository.UserPlanRepository
}

func NewUserPlanUseCase(userPlans repository.UserPlanRepository) *userPlanUC {
	return &userPlanUC{userPlans: userPlans}
}

func (u *userPlanUC) Create(ctx context.Context, tx repository.Tx, userID string, plan *model.Plan, paymentMethod model.PaymentMethod, autoRenew bool, trialEndsAt *time.Time) (*model.UserPlan, error) {
	now := time.Now()
	up := &model.UserPlan{
		ID:            uuid.NewString(),
		UserID:        userID,
		PlanID:        plan.ID,
		Status:        model.UserPlanStatusPendingPayment,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, plan.DurationDays),
		TrialEndsAt:   trialEndsAt,
		AutoRenew:     autoRenew,
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := up.Validate(); err != nil {
		return nil, err
	}
	if err := u.userPlans.Save(ctx, tx, up); err != nil {
		return nil, err
	}
	return up, nil
}

func (u *userPlanUC) Activate(ctx context.Context, tx repository.Tx, id string, lastPaymentID string) (*model.UserPlan, error) {
	up, err := u.userPlans.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	target := model.UserPlanStatusActive
	if up.TrialEndsAt != nil && up.TrialEndsAt.After(time.Now()) {
		target = model.UserPlanStatusTrial
	}
	if up.Status == target {
		return up, nil // already there; idempotent
	}
	expected := []model.UserPlanStatus{model.UserPlanStatusPendingPayment, model.UserPlanStatusExpired}
	if target == model.UserPlanStatusActive {
		expected = append(expected, model.UserPlanStatusTrial)
	}
	if !contains(expected, up.Status) {
		return nil, fmt.Errorf("cannot activate a plan in status %q: %w", up.Status, domain.ErrInvalidTransition)
	}

	patch := model.UserPlanPatch{
		Status:            target,
		LastPaymentID:     &lastPaymentID,
		ClearCancellation: true,
	}
	changed, err := u.userPlans.UpdateStatusIf(ctx, tx, id, expected, patch)
	if err != nil {
		return nil, err
	}
	if !changed {
		// lost the race; re-read and classify
		return u.reloadAfterMiss(ctx, tx, id, target, "activate")
	}
	up.Status = target
	up.LastPaymentID = &lastPaymentID
	up.CancelledAt = nil
	up.CancellationReason = nil
	return up, nil
}

func (u *userPlanUC) Cancel(ctx context.Context, tx repository.Tx, id, reason string) (*model.UserPlan, error) {
	up, err := u.userPlans.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if up.Status == model.UserPlanStatusCancelled {
		return nil, fmt.Errorf("plan is already cancelled: %w", domain.ErrConflict)
	}
	if !up.Status.CanTransition(model.UserPlanStatusCancelled) {
		return nil, fmt.Errorf("cannot cancel a plan in status %q: %w", up.Status, domain.ErrInvalidTransition)
	}

	now := time.Now()
	off := false
	patch := model.UserPlanPatch{
		Status:             model.UserPlanStatusCancelled,
		CancelledAt:        &now,
		CancellationReason: &reason,
		AutoRenew:          &off,
	}
	expected := []model.UserPlanStatus{up.Status}
	changed, err := u.userPlans.UpdateStatusIf(ctx, tx, id, expected, patch)
	if err != nil {
		return nil, err
	}
	if !changed {
		return u.reloadAfterMiss(ctx, tx, id, model.UserPlanStatusCancelled, "cancel")
	}
	up.Status = model.UserPlanStatusCancelled
	up.CancelledAt = &now
	up.CancellationReason = &reason
	up.AutoRenew = false
	return up, nil
}

func (u *userPlanUC) Suspend(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	return u.simpleTransition(ctx, tx, id, model.UserPlanStatusSuspended, "suspend",
		[]model.UserPlanStatus{model.UserPlanStatusActive, model.UserPlanStatusTrial})
}

func (u *userPlanUC) Resume(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	return u.simpleTransition(ctx, tx, id, model.UserPlanStatusActive, "resume",
		[]model.UserPlanStatus{model.UserPlanStatusSuspended})
}

func (u *userPlanUC) Renew(ctx context.Context, tx repository.Tx, id string, plan *model.Plan, lastPaymentID string) (*model.UserPlan, error) {
	up, err := u.userPlans.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	base := up.EndDate
	if now := time.Now(); base.Before(now) {
		base = now
	}
	newEnd := base.AddDate(0, 0, plan.DurationDays)
	if err := u.userPlans.Renew(ctx, tx, id, newEnd, lastPaymentID); err != nil {
		return nil, err
	}
	up.Status = model.UserPlanStatusActive
	up.EndDate = newEnd
	up.LastPaymentID = &lastPaymentID
	return up, nil
}

func (u *userPlanUC) Expire(ctx context.Context, id string) (*model.UserPlan, error) {
	return u.simpleTransition(ctx, nil, id, model.UserPlanStatusExpired, "expire",
		[]model.UserPlanStatus{model.UserPlanStatusActive, model.UserPlanStatusTrial})
}

func (u *userPlanUC) ExpireDue(ctx context.Context, now time.Time) (repository.SweepResult, error) {
	return u.userPlans.ExpireDue(ctx, nil, now)
}

func (u *userPlanUC) UpdateMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	return u.userPlans.MergeMetadata(ctx, nil, id, metadata)
}

func (u *userPlanUC) GetByID(ctx context.Context, id string) (*model.UserPlan, error) {
	return u.userPlans.FindByID(ctx, nil, id)
}

func (u *userPlanUC) GetForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	return u.userPlans.FindByID(ctx, tx, id)
}

func (u *userPlanUC) FindByUser(ctx context.Context, userID string) ([]*model.UserPlan, error) {
	return u.userPlans.FindByUser(ctx, nil, userID)
}

func (u *userPlanUC) UserHasActivePlan(ctx context.Context, userID string) (bool, error) {
	return u.userPlans.UserHasActivePlan(ctx, nil, userID)
}

func (u *userPlanUC) simpleTransition(ctx context.Context, tx repository.Tx, id string, target model.UserPlanStatus, verb string, expected []model.UserPlanStatus) (*model.UserPlan, error) {
	up, err := u.userPlans.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if up.Status == target {
		return up, nil
	}
	if !contains(expected, up.Status) {
		return nil, fmt.Errorf("cannot %s a plan in status %q: %w", verb, up.Status, domain.ErrInvalidTransition)
	}
	changed, err := u.userPlans.UpdateStatusIf(ctx, tx, id, expected, model.UserPlanPatch{Status: target})
	if err != nil {
		return nil, err
	}
	if !changed {
		return u.reloadAfterMiss(ctx, tx, id, target, verb)
	}
	up.Status = target
	return up, nil
}

// reloadAfterMiss re-reads after a zero-row conditional update. A concurrent
// writer that reached the same target makes this call a no-op; anything else
// is a real transition violation.
func (u *userPlanUC) reloadAfterMiss(ctx context.Context, tx repository.Tx, id string, target model.UserPlanStatus, verb string) (*model.UserPlan, error) {
	cur, err := u.userPlans.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status == target {
		return cur, nil
	}
	return nil, fmt.Errorf("cannot %s a plan in status %q: %w", verb, cur.Status, domain.ErrInvalidTransition)
}

func contains[T comparable](xs []T, x T) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
