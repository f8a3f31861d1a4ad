package repository

import (
	"context"

	"subscription-billing/internal/domain/model"
)

type NotificationLogRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	FindByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Notification, error)
}
