package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

const couponColumns = `id, code, discount_type, discount_value, expiration_date,
max_uses, times_used, is_active, applicable_plan_ids, created_by, created_at, updated_at`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	c := &model.Coupon{}
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.ExpirationDate,
		&c.MaxUses, &c.TimesUsed, &c.IsActive, &c.ApplicablePlanIDs,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return c, nil
}

func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (` + couponColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  discount_type=$3, discount_value=$4, expiration_date=$5, max_uses=$6,
  times_used=$7, is_active=$8, applicable_plan_ids=$9, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, c.DiscountType, c.DiscountValue, c.ExpirationDate,
		c.MaxUses, c.TimesUsed, c.IsActive, c.ApplicablePlanIDs,
		c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		metrics.IncDBQueryError("coupons")
		return mapExecErr(err)
	}
	return nil
}

func (r *couponRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE id=$1`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCoupon(row)
}

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE code=$1`
	row, err := pickRow(ctx, r.pool, tx, q, model.NormalizeCouponCode(code))
	if err != nil {
		return nil, err
	}
	return scanCoupon(row)
}

func (r *couponRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE is_active ORDER BY created_at DESC`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		metrics.IncDBQueryError("coupons")
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// IncrementUsage bumps and deactivates in one statement; the WHERE clause
// rejects exhausted or inactive coupons so concurrent redemptions cannot
// push times_used past the cap.
func (r *couponRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string) error {
	const q = `
UPDATE coupons
   SET times_used = times_used + 1,
       is_active = CASE
         WHEN max_uses IS NOT NULL AND times_used + 1 >= max_uses THEN FALSE
         ELSE is_active
       END,
       updated_at = NOW()
 WHERE id = $1
   AND is_active
   AND (max_uses IS NULL OR times_used < max_uses)`

	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		metrics.IncDBQueryError("coupons")
		return mapExecErr(err)
	}
	if cmd.RowsAffected() >= 1 {
		return nil
	}

	// zero rows: reload to say why
	cur, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if cur.UsageCapReached() {
		return domain.ErrCouponUsageCap
	}
	return domain.ErrCouponInactive
}
