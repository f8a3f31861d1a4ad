package repository

import (
	"context"
	"time"

	"subscription-billing/internal/domain/model"
)

// SweepResult reports one expiration sweep pass. ProcessedCount counts every
// overdue entitlement the sweep looked at; ExpiredCount counts the subset it
// actually moved to expired (auto-renewing rows are looked at but skipped).
type SweepResult struct {
	ProcessedCount int
	ExpiredCount   int
}

type UserPlanRepository interface {
	Save(ctx context.Context, tx Tx, up *model.UserPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserPlan, error)
	FindByUser(ctx context.Context, tx Tx, userID string) ([]*model.UserPlan, error)
	FindActiveByUserAndPlan(ctx context.Context, tx Tx, userID, planID string) (*model.UserPlan, error)
	UserHasActivePlan(ctx context.Context, tx Tx, userID string) (bool, error)

	// UpdateStatusIf applies patch only when the stored status is one of
	// expected; metadata in the patch is merged, not replaced.
	UpdateStatusIf(ctx context.Context, tx Tx, id string, expected []model.UserPlanStatus, patch model.UserPlanPatch) (bool, error)

	// Renew extends the validity window unconditionally and forces the
	// status to active; used by the renewal path which has already decided.
	Renew(ctx context.Context, tx Tx, id string, newEndDate time.Time, lastPaymentID string) error

	// MergeMetadata merges the given keys into the stored metadata.
	MergeMetadata(ctx context.Context, tx Tx, id string, metadata map[string]interface{}) error

	// ExpireDue moves every overdue non-auto-renewing active/trial
	// entitlement to expired in one conditional statement.
	ExpireDue(ctx context.Context, tx Tx, now time.Time) (SweepResult, error)
}
