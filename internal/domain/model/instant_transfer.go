package model

import "time"

type InstantTransferStatus string

const (
	InstantTransferStatusActive    InstantTransferStatus = "active"
	InstantTransferStatusCompleted InstantTransferStatus = "completed"
	InstantTransferStatusExpired   InstantTransferStatus = "expired"
	InstantTransferStatusCancelled InstantTransferStatus = "cancelled"
)

// InstantTransfer is the pay-code sub-record backing an instant-transfer
// payment. Its lifecycle is narrower than the parent payment's and is moved
// with its own conditional update, so a duplicate confirmation is absorbed
// here before the parent is even touched.
type InstantTransfer struct {
	ID        string
	PaymentID string
	TxID      string // gateway transaction id used to correlate webhooks

	PayCode    string // copy-paste payment code shown to the user
	PayCodeURL string

	ExpirationDate time.Time
	Status         InstantTransferStatus

	EndToEndID *string // settlement id, present once completed

	CreatedAt time.Time
	UpdatedAt time.Time
}
