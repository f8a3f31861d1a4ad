package repository

import (
	"context"

	"subscription-billing/internal/domain/model"
)

// PaymentFilter narrows List results. Zero values mean "no filter".
type PaymentFilter struct {
	Status model.PaymentStatus
	Method model.PaymentMethod
	Limit  int
}

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByExternalID(ctx context.Context, tx Tx, externalID string) (*model.Payment, error)
	FindByUser(ctx context.Context, tx Tx, userID string) ([]*model.Payment, error)
	FindByUserPlan(ctx context.Context, tx Tx, userPlanID string) ([]*model.Payment, error)
	List(ctx context.Context, tx Tx, filter PaymentFilter) ([]*model.Payment, error)

	// UpdateStatusIf applies patch only when the stored status is one of
	// expected. It reports whether a row was changed; false with a nil
	// error means another writer got there first.
	UpdateStatusIf(ctx context.Context, tx Tx, id string, expected []model.PaymentStatus, patch model.PaymentPatch) (bool, error)
}

type InstantTransferRepository interface {
	Save(ctx context.Context, tx Tx, it *model.InstantTransfer) error
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.InstantTransfer, error)
	FindByTxID(ctx context.Context, tx Tx, txid string) (*model.InstantTransfer, error)
	ListExpiredActive(ctx context.Context, tx Tx, limit int) ([]*model.InstantTransfer, error)

	// UpdateStatusIf is the sub-record CAS; duplicate gateway confirmations
	// die here as a zero-row update.
	UpdateStatusIf(ctx context.Context, tx Tx, id string, expected []model.InstantTransferStatus, status model.InstantTransferStatus, endToEndID *string) (bool, error)
}

type CardTransactionRepository interface {
	Save(ctx context.Context, tx Tx, ct *model.CardTransaction) error
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.CardTransaction, error)
	UpdateStatusIf(ctx context.Context, tx Tx, id string, expected []model.CardTransactionStatus, status model.CardTransactionStatus, authorizationCode *string) (bool, error)
}
