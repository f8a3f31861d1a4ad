package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	"subscription-billing/internal/domain/ports/repository"
)

var _ adapter.Notifier = (*logNotifier)(nil)

// logNotifier records every notification in the audit table and emits a
// structured log line. A real delivery channel (email, push) would decorate
// or replace it with the same interface.
type logNotifier struct {
	log    repository.NotificationLogRepository
	logger zerolog.Logger
}

func NewLogNotifier(log repository.NotificationLogRepository, logger zerolog.Logger) *logNotifier {
	return &logNotifier{
		log:    log,
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *logNotifier) Notify(ctx context.Context, userID string, paymentID *string, kind model.NotificationKind, title, message string) error {
	rec := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		PaymentID: paymentID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := n.log.Save(ctx, nil, rec); err != nil {
		return err
	}
	n.logger.Info().
		Str("user_id", userID).
		Str("kind", string(kind)).
		Str("title", title).
		Msg("notification recorded")
	return nil
}
