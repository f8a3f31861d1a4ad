package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

var _ repository.CardTransactionRepository = (*cardTransactionRepo)(nil)

type cardTransactionRepo struct{ pool *pgxpool.Pool }

func NewCardTransactionRepo(pool *pgxpool.Pool) *cardTransactionRepo {
	return &cardTransactionRepo{pool: pool}
}

const cardTransactionColumns = `id, payment_id, gateway_transaction_id, authorization_code,
card_brand, card_last_four, installments, error_code, error_message, status,
created_at, updated_at`

func scanCardTransaction(row pgx.Row) (*model.CardTransaction, error) {
	ct := &model.CardTransaction{}
	err := row.Scan(
		&ct.ID, &ct.PaymentID, &ct.GatewayTransactionID, &ct.AuthorizationCode,
		&ct.CardBrand, &ct.CardLastFour, &ct.Installments,
		&ct.ErrorCode, &ct.ErrorMessage, &ct.Status,
		&ct.CreatedAt, &ct.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return ct, nil
}

func (r *cardTransactionRepo) Save(ctx context.Context, tx repository.Tx, ct *model.CardTransaction) error {
	const q = `
INSERT INTO card_transactions (` + cardTransactionColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  gateway_transaction_id=$3, authorization_code=$4, error_code=$8,
  error_message=$9, status=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		ct.ID, ct.PaymentID, ct.GatewayTransactionID, ct.AuthorizationCode,
		ct.CardBrand, ct.CardLastFour, ct.Installments,
		ct.ErrorCode, ct.ErrorMessage, ct.Status,
		ct.CreatedAt, ct.UpdatedAt,
	)
	if err != nil {
		metrics.IncDBQueryError("card_transactions")
		return mapExecErr(err)
	}
	return nil
}

func (r *cardTransactionRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.CardTransaction, error) {
	q := `SELECT ` + cardTransactionColumns + ` FROM card_transactions
WHERE payment_id=$1 ORDER BY created_at DESC LIMIT 1`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanCardTransaction(row)
}

func (r *cardTransactionRepo) UpdateStatusIf(ctx context.Context, tx repository.Tx, id string, expected []model.CardTransactionStatus, status model.CardTransactionStatus, authorizationCode *string) (bool, error) {
	const q = `
UPDATE card_transactions
   SET status = $3,
       authorization_code = COALESCE($4, authorization_code),
       updated_at = NOW()
 WHERE id = $1
   AND status = ANY($2)`

	exp := make([]string, len(expected))
	for i, s := range expected {
		exp[i] = string(s)
	}
	cmd, err := execSQL(ctx, r.pool, tx, q, id, exp, string(status), authorizationCode)
	if err != nil {
		metrics.IncDBQueryError("card_transactions")
		return false, mapExecErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}
