package model

import "time"

type CardTransactionStatus string

const (
	CardTransactionStatusPending    CardTransactionStatus = "pending"
	CardTransactionStatusAuthorized CardTransactionStatus = "authorized"
	CardTransactionStatusCaptured   CardTransactionStatus = "captured"
	CardTransactionStatusRejected   CardTransactionStatus = "rejected"
	CardTransactionStatusRefunded   CardTransactionStatus = "refunded"
	CardTransactionStatusCancelled  CardTransactionStatus = "cancelled"
	CardTransactionStatusChargeback CardTransactionStatus = "chargeback"
)

// CardTransaction tracks the two-phase card flow (authorize, then capture)
// behind a card payment. Authorization alone does not approve the parent
// payment; capture does.
type CardTransaction struct {
	ID        string
	PaymentID string

	GatewayTransactionID *string
	AuthorizationCode    *string

	CardBrand    string
	CardLastFour string
	Installments int

	ErrorCode    *string
	ErrorMessage *string

	Status CardTransactionStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
