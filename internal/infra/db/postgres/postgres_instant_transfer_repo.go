package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

var _ repository.InstantTransferRepository = (*instantTransferRepo)(nil)

type instantTransferRepo struct{ pool *pgxpool.Pool }

func NewInstantTransferRepo(pool *pgxpool.Pool) *instantTransferRepo {
	return &instantTransferRepo{pool: pool}
}

const instantTransferColumns = `id, payment_id, txid, pay_code, pay_code_url,
expiration_date, status, end_to_end_id, created_at, updated_at`

func scanInstantTransfer(row pgx.Row) (*model.InstantTransfer, error) {
	it := &model.InstantTransfer{}
	err := row.Scan(
		&it.ID, &it.PaymentID, &it.TxID, &it.PayCode, &it.PayCodeURL,
		&it.ExpirationDate, &it.Status, &it.EndToEndID, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return it, nil
}

func (r *instantTransferRepo) Save(ctx context.Context, tx repository.Tx, it *model.InstantTransfer) error {
	const q = `
INSERT INTO instant_transfers (` + instantTransferColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  status=$7, end_to_end_id=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q,
		it.ID, it.PaymentID, it.TxID, it.PayCode, it.PayCodeURL,
		it.ExpirationDate, it.Status, it.EndToEndID, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		metrics.IncDBQueryError("instant_transfers")
		return mapExecErr(err)
	}
	return nil
}

func (r *instantTransferRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.InstantTransfer, error) {
	q := `SELECT ` + instantTransferColumns + ` FROM instant_transfers
WHERE payment_id=$1 ORDER BY created_at DESC LIMIT 1`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanInstantTransfer(row)
}

func (r *instantTransferRepo) FindByTxID(ctx context.Context, tx repository.Tx, txid string) (*model.InstantTransfer, error) {
	q := `SELECT ` + instantTransferColumns + ` FROM instant_transfers WHERE txid=$1`
	row, err := pickRow(ctx, r.pool, tx, q, txid)
	if err != nil {
		return nil, err
	}
	return scanInstantTransfer(row)
}

func (r *instantTransferRepo) ListExpiredActive(ctx context.Context, tx repository.Tx, limit int) ([]*model.InstantTransfer, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + instantTransferColumns + ` FROM instant_transfers
WHERE status='active' AND expiration_date < NOW()
ORDER BY expiration_date ASC LIMIT $1`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		metrics.IncDBQueryError("instant_transfers")
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.InstantTransfer
	for rows.Next() {
		it, err := scanInstantTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *instantTransferRepo) UpdateStatusIf(ctx context.Context, tx repository.Tx, id string, expected []model.InstantTransferStatus, status model.InstantTransferStatus, endToEndID *string) (bool, error) {
	const q = `
UPDATE instant_transfers
   SET status = $3,
       end_to_end_id = COALESCE($4, end_to_end_id),
       updated_at = NOW()
 WHERE id = $1
   AND status = ANY($2)`

	exp := make([]string, len(expected))
	for i, s := range expected {
		exp[i] = string(s)
	}
	cmd, err := execSQL(ctx, r.pool, tx, q, id, exp, string(status), endToEndID)
	if err != nil {
		metrics.IncDBQueryError("instant_transfers")
		return false, mapExecErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}
