package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

var _ repository.UserPlanRepository = (*userPlanRepo)(nil)

type userPlanRepo struct{ pool *pgxpool.Pool }

func NewUserPlanRepo(pool *pgxpool.Pool) *userPlanRepo {
	return &userPlanRepo{pool: pool}
}

const userPlanColumns = `id, user_id, plan_id, status, start_date, end_date,
trial_ends_at, auto_renew, last_payment_id, payment_method,
cancelled_at, cancellation_reason, metadata, created_at, updated_at`

func scanUserPlan(row pgx.Row) (*model.UserPlan, error) {
	up := &model.UserPlan{}
	var meta []byte
	err := row.Scan(
		&up.ID, &up.UserID, &up.PlanID, &up.Status, &up.StartDate, &up.EndDate,
		&up.TrialEndsAt, &up.AutoRenew, &up.LastPaymentID, &up.PaymentMethod,
		&up.CancelledAt, &up.CancellationReason, &meta, &up.CreatedAt, &up.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	scanJSONB(meta, &up.Metadata)
	return up, nil
}

func (r *userPlanRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPlan) error {
	const q = `
INSERT INTO user_plans (` + userPlanColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
) ON CONFLICT (id) DO UPDATE SET
  status=$4, start_date=$5, end_date=$6, trial_ends_at=$7, auto_renew=$8,
  last_payment_id=$9, cancelled_at=$11, cancellation_reason=$12,
  metadata=$13, updated_at=$15;`

	meta, err := jsonbArg(up.Metadata)
	if err != nil {
		return domain.ErrOperationFailed
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		up.ID, up.UserID, up.PlanID, up.Status, up.StartDate, up.EndDate,
		up.TrialEndsAt, up.AutoRenew, up.LastPaymentID, up.PaymentMethod,
		up.CancelledAt, up.CancellationReason, meta, up.CreatedAt, up.UpdatedAt,
	)
	if err != nil {
		metrics.IncDBQueryError("user_plans")
		return mapExecErr(err)
	}
	return nil
}

func (r *userPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	q := `SELECT ` + userPlanColumns + ` FROM user_plans WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUserPlan(row)
}

func (r *userPlanRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.UserPlan, error) {
	q := `SELECT ` + userPlanColumns + ` FROM user_plans WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		metrics.IncDBQueryError("user_plans")
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.UserPlan
	for rows.Next() {
		up, err := scanUserPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

func (r *userPlanRepo) FindActiveByUserAndPlan(ctx context.Context, tx repository.Tx, userID, planID string) (*model.UserPlan, error) {
	q := `SELECT ` + userPlanColumns + ` FROM user_plans
WHERE user_id=$1 AND plan_id=$2 AND status IN ('active','trial') LIMIT 1`
	row, err := pickRow(ctx, r.pool, tx, q, userID, planID)
	if err != nil {
		return nil, err
	}
	return scanUserPlan(row)
}

func (r *userPlanRepo) UserHasActivePlan(ctx context.Context, tx repository.Tx, userID string) (bool, error) {
	const q = `SELECT EXISTS (
  SELECT 1 FROM user_plans WHERE user_id=$1 AND status IN ('active','trial')
)`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return ok, nil
}

func (r *userPlanRepo) UpdateStatusIf(ctx context.Context, tx repository.Tx, id string, expected []model.UserPlanStatus, patch model.UserPlanPatch) (bool, error) {
	const q = `
UPDATE user_plans
   SET status = $3,
       end_date = COALESCE($4, end_date),
       auto_renew = COALESCE($5, auto_renew),
       last_payment_id = COALESCE($6, last_payment_id),
       cancelled_at = CASE WHEN $9 THEN NULL ELSE COALESCE($7, cancelled_at) END,
       cancellation_reason = CASE WHEN $9 THEN NULL ELSE COALESCE($8, cancellation_reason) END,
       metadata = COALESCE(metadata, '{}'::jsonb) || $10::jsonb,
       updated_at = NOW()
 WHERE id = $1
   AND status = ANY($2)`

	exp := make([]string, len(expected))
	for i, s := range expected {
		exp[i] = string(s)
	}
	meta, err := jsonbMergeArg(patch.Metadata)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	cmd, err := execSQL(ctx, r.pool, tx, q,
		id, exp, string(patch.Status),
		patch.EndDate, patch.AutoRenew, patch.LastPaymentID,
		patch.CancelledAt, patch.CancellationReason, patch.ClearCancellation,
		meta,
	)
	if err != nil {
		metrics.IncDBQueryError("user_plans")
		return false, mapExecErr(err)
	}
	won := cmd.RowsAffected() >= 1
	if won {
		metrics.IncUserPlan(string(patch.Status))
	}
	return won, nil
}

func (r *userPlanRepo) Renew(ctx context.Context, tx repository.Tx, id string, newEndDate time.Time, lastPaymentID string) error {
	const q = `
UPDATE user_plans
   SET status = 'active',
       end_date = $2,
       last_payment_id = $3,
       cancelled_at = NULL,
       cancellation_reason = NULL,
       updated_at = NOW()
 WHERE id = $1`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, newEndDate, lastPaymentID)
	if err != nil {
		metrics.IncDBQueryError("user_plans")
		return mapExecErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	metrics.IncUserPlan(string(model.UserPlanStatusActive))
	return nil
}

func (r *userPlanRepo) MergeMetadata(ctx context.Context, tx repository.Tx, id string, metadata map[string]interface{}) error {
	const q = `
UPDATE user_plans
   SET metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb,
       updated_at = NOW()
 WHERE id = $1`
	meta, err := jsonbMergeArg(metadata)
	if err != nil {
		return domain.ErrOperationFailed
	}
	cmd, err := execSQL(ctx, r.pool, tx, q, id, meta)
	if err != nil {
		metrics.IncDBQueryError("user_plans")
		return mapExecErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExpireDue moves every overdue non-auto-renewing entitlement in a single
// conditional statement, so overlapping sweeps cannot double-expire a row.
func (r *userPlanRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) (repository.SweepResult, error) {
	var res repository.SweepResult

	const countQ = `
SELECT COUNT(*) FROM user_plans
 WHERE status IN ('active','trial') AND end_date < $1`
	row, err := pickRow(ctx, r.pool, tx, countQ, now)
	if err != nil {
		return res, err
	}
	if err := row.Scan(&res.ProcessedCount); err != nil {
		return res, domain.ErrReadDatabaseRow
	}

	const q = `
UPDATE user_plans
   SET status = 'expired', updated_at = NOW()
 WHERE status IN ('active','trial')
   AND end_date < $1
   AND auto_renew = FALSE`
	cmd, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		metrics.IncDBQueryError("user_plans")
		return res, mapExecErr(err)
	}
	res.ExpiredCount = int(cmd.RowsAffected())
	metrics.AddUserPlansExpired(res.ExpiredCount)
	return res, nil
}
