package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planColumns = `id, name, description, price, currency, duration_days,
billing_interval, is_active, is_public, features, limits, created_at, updated_at`

func scanPlan(row pgx.Row) (*model.Plan, error) {
	p := &model.Plan{}
	var limits []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.DurationDays,
		&p.Interval, &p.IsActive, &p.IsPublic, &p.Features, &limits,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	if len(limits) > 0 {
		_ = json.Unmarshal(limits, &p.Limits)
	}
	return p, nil
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	const q = `
INSERT INTO plans (` + planColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, price=$4, currency=$5, duration_days=$6,
  billing_interval=$7, is_active=$8, is_public=$9, features=$10, limits=$11,
  updated_at=$13;`

	limits, err := json.Marshal(p.Limits)
	if err != nil {
		return domain.ErrOperationFailed
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.Name, p.Description, p.Price, p.Currency, p.DurationDays,
		p.Interval, p.IsActive, p.IsPublic, p.Features, limits,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		metrics.IncDBQueryError("plans")
		return mapExecErr(err)
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE id=$1`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListPublic(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE is_public AND is_active ORDER BY price ASC`
	return r.queryMany(ctx, tx, q)
}

func (r *planRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans ORDER BY price ASC`
	return r.queryMany(ctx, tx, q)
}

func (r *planRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Plan, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		metrics.IncDBQueryError("plans")
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Delete soft-deactivates; historic payments keep a valid plan reference.
func (r *planRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE plans SET is_active = FALSE, is_public = FALSE, updated_at = NOW() WHERE id=$1`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		metrics.IncDBQueryError("plans")
		return mapExecErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
