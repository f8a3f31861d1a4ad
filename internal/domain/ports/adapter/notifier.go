package adapter

import (
	"context"

	"subscription-billing/internal/domain/model"
)

// Notifier delivers a user-facing message about a lifecycle event. Callers
// treat errors as log-and-continue; a notification never blocks a
// transition.
type Notifier interface {
	Notify(ctx context.Context, userID string, paymentID *string, kind model.NotificationKind, title, message string) error
}
