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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, plan_id, user_plan_id, coupon_id,
original_amount, discount_amount, amount, currency, payment_method, status,
external_id, external_reference, receipt_url, transaction_data, metadata,
failure_reason, refund_reason, cancellation_reason, chargeback_reason,
refunded_by, refund_transaction_id,
processed_at, paid_at, refunded_at, cancelled_at, chargeback_at,
created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var txData, meta []byte
	err := row.Scan(
		&p.ID, &p.UserID, &p.PlanID, &p.UserPlanID, &p.CouponID,
		&p.OriginalAmount, &p.DiscountAmount, &p.Amount, &p.Currency, &p.PaymentMethod, &p.Status,
		&p.ExternalID, &p.ExternalReference, &p.ReceiptURL, &txData, &meta,
		&p.FailureReason, &p.RefundReason, &p.CancellationReason, &p.ChargebackReason,
		&p.RefundedBy, &p.RefundTransactionID,
		&p.ProcessedAt, &p.PaidAt, &p.RefundedAt, &p.CancelledAt, &p.ChargebackAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	scanJSONB(txData, &p.TransactionData)
	scanJSONB(meta, &p.Metadata)
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (` + paymentColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29
) ON CONFLICT (id) DO UPDATE SET
  user_plan_id=$4, coupon_id=$5, status=$11, external_id=$12, external_reference=$13,
  receipt_url=$14, transaction_data=$15, metadata=$16, failure_reason=$17,
  refund_reason=$18, cancellation_reason=$19, chargeback_reason=$20,
  refunded_by=$21, refund_transaction_id=$22, processed_at=$23, paid_at=$24,
  refunded_at=$25, cancelled_at=$26, chargeback_at=$27, updated_at=$29;`

	txData, err := jsonbArg(p.TransactionData)
	if err != nil {
		return domain.ErrOperationFailed
	}
	meta, err := jsonbArg(p.Metadata)
	if err != nil {
		return domain.ErrOperationFailed
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.PlanID, p.UserPlanID, p.CouponID,
		p.OriginalAmount, p.DiscountAmount, p.Amount, p.Currency, p.PaymentMethod, p.Status,
		p.ExternalID, p.ExternalReference, p.ReceiptURL, txData, meta,
		p.FailureReason, p.RefundReason, p.CancellationReason, p.ChargebackReason,
		p.RefundedBy, p.RefundTransactionID,
		p.ProcessedAt, p.PaidAt, p.RefundedAt, p.CancelledAt, p.ChargebackAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		metrics.IncDBQueryError("payments")
		return mapExecErr(err)
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByExternalID(ctx context.Context, tx repository.Tx, externalID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments
WHERE external_id=$1 OR external_reference=$1 LIMIT 1`
	row, err := pickRow(ctx, r.pool, tx, q, externalID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id=$1 ORDER BY created_at DESC`
	return r.queryMany(ctx, tx, q, userID)
}

func (r *paymentRepo) FindByUserPlan(ctx context.Context, tx repository.Tx, userPlanID string) ([]*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE user_plan_id=$1 ORDER BY created_at DESC`
	return r.queryMany(ctx, tx, q, userPlanID)
}

func (r *paymentRepo) List(ctx context.Context, tx repository.Tx, filter repository.PaymentFilter) ([]*model.Payment, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + paymentColumns + ` FROM payments
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR payment_method = $2)
ORDER BY created_at DESC LIMIT $3`
	return r.queryMany(ctx, tx, q, string(filter.Status), string(filter.Method), limit)
}

func (r *paymentRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Payment, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		metrics.IncDBQueryError("payments")
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdateStatusIf applies the patch only when the current status is one of
// expected; concurrent writers resolve on this statement, zero rows means
// somebody else already moved the row.
func (r *paymentRepo) UpdateStatusIf(ctx context.Context, tx repository.Tx, id string, expected []model.PaymentStatus, patch model.PaymentPatch) (bool, error) {
	const q = `
UPDATE payments
   SET status = $3,
       external_id = COALESCE($4, external_id),
       external_reference = COALESCE($5, external_reference),
       receipt_url = COALESCE($6, receipt_url),
       failure_reason = COALESCE($7, failure_reason),
       refund_reason = COALESCE($8, refund_reason),
       cancellation_reason = COALESCE($9, cancellation_reason),
       chargeback_reason = COALESCE($10, chargeback_reason),
       refunded_by = COALESCE($11, refunded_by),
       refund_transaction_id = COALESCE($12, refund_transaction_id),
       transaction_data = COALESCE(transaction_data, '{}'::jsonb) || $13::jsonb,
       processed_at = COALESCE($14, processed_at),
       paid_at = COALESCE($15, paid_at),
       refunded_at = COALESCE($16, refunded_at),
       cancelled_at = COALESCE($17, cancelled_at),
       chargeback_at = COALESCE($18, chargeback_at),
       updated_at = NOW()
 WHERE id = $1
   AND status = ANY($2)`

	exp := make([]string, len(expected))
	for i, s := range expected {
		exp[i] = string(s)
	}
	txData, err := jsonbMergeArg(patch.TransactionData)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	cmd, err := execSQL(ctx, r.pool, tx, q,
		id, exp, string(patch.Status),
		patch.ExternalID, patch.ExternalReference, patch.ReceiptURL,
		patch.FailureReason, patch.RefundReason, patch.CancellationReason,
		patch.ChargebackReason, patch.RefundedBy, patch.RefundTransactionID,
		txData,
		patch.ProcessedAt, patch.PaidAt, patch.RefundedAt, patch.CancelledAt, patch.ChargebackAt,
	)
	if err != nil {
		metrics.IncDBQueryError("payments")
		return false, mapExecErr(err)
	}
	won := cmd.RowsAffected() >= 1
	if won {
		metrics.IncPayment(string(patch.Status))
		if patch.Status == model.PaymentStatusApproved {
			// revenue is counted once, on the winning transition
			if p, err := r.FindByID(ctx, tx, id); err == nil {
				metrics.AddPaymentRevenue(p.Currency, p.Amount)
			}
		}
	}
	return won, nil
}
