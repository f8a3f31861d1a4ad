package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct{ pool *pgxpool.Pool }

func NewNotificationLogRepo(pool *pgxpool.Pool) *notificationLogRepo {
	return &notificationLogRepo{pool: pool}
}

const notificationColumns = `id, user_id, payment_id, kind, title, message, created_at`

func scanNotification(row pgx.Row) (*model.Notification, error) {
	n := &model.Notification{}
	err := row.Scan(&n.ID, &n.UserID, &n.PaymentID, &n.Kind, &n.Title, &n.Message, &n.CreatedAt)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return n, nil
}

func (r *notificationLogRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `
INSERT INTO notifications (` + notificationColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7
) ON CONFLICT (id) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q,
		n.ID, n.UserID, n.PaymentID, n.Kind, n.Title, n.Message, n.CreatedAt,
	)
	if err != nil {
		metrics.IncDBQueryError("notifications")
		return mapExecErr(err)
	}
	return nil
}

func (r *notificationLogRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + notificationColumns + ` FROM notifications
WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		metrics.IncDBQueryError("notifications")
		return nil, mapExecErr(err)
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
