package model

import (
	"encoding/json"
	"fmt"
	"time"

	"subscription-billing/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"    // created; awaiting gateway outcome
	PaymentStatusApproved   PaymentStatus = "APPROVED"   // gateway confirmed the charge
	PaymentStatusRejected   PaymentStatus = "REJECTED"   // gateway declined; user may retry
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"   // money returned; terminal
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"  // cancelled before approval; may reactivate
	PaymentStatusChargeback PaymentStatus = "CHARGEBACK" // disputed by the card holder
	PaymentStatusFailed     PaymentStatus = "FAILED"     // unrecoverable processing failure; terminal
)

type PaymentMethod string

const (
	PaymentMethodCard            PaymentMethod = "card"
	PaymentMethodInstantTransfer PaymentMethod = "instant-transfer"
	PaymentMethodAdminGrant      PaymentMethod = "admin-grant"
	PaymentMethodFree            PaymentMethod = "free"
	PaymentMethodBankSlip        PaymentMethod = "bank-slip"
	PaymentMethodOther           PaymentMethod = "other"
)

// Monetary amounts are integer minor units (cents), to avoid float errors.
const (
	MinAmount       int64 = 1              // one cent
	MaxAmount       int64 = 100_000_000_00 // 100 million in the base currency
	MaxMetadataSize       = 10_000         // bytes of encoded JSON
)

var ValidCurrencies = map[string]bool{"BRL": true, "USD": true, "EUR": true}

var validPaymentMethods = map[PaymentMethod]bool{
	PaymentMethodCard:            true,
	PaymentMethodInstantTransfer: true,
	PaymentMethodAdminGrant:      true,
	PaymentMethodFree:            true,
	PaymentMethodBankSlip:        true,
	PaymentMethodOther:           true,
}

// paymentTransitions lists the allowed next statuses per current status.
// REFUNDED and FAILED are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled, PaymentStatusFailed},
	PaymentStatusApproved:   {PaymentStatusRefunded, PaymentStatusChargeback},
	PaymentStatusRejected:   {PaymentStatusPending},
	PaymentStatusCancelled:  {PaymentStatusPending},
	PaymentStatusChargeback: {PaymentStatusApproved},
	PaymentStatusRefunded:   {},
	PaymentStatusFailed:     {},
}

// CanTransition reports whether from -> to is in the transition table.
// Same-status is not a transition; callers treat it as an idempotent no-op.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// Payment records one purchase attempt, independent of the entitlement it
// funds. It is never deleted; every status change flows through the payment
// use case and is persisted as a conditional update.
type Payment struct {
	ID         string
	UserID     string
	PlanID     string
	UserPlanID *string // entitlement funded by this payment, if any
	CouponID   *string

	OriginalAmount int64 // cents, before discount
	DiscountAmount int64 // cents
	Amount         int64 // cents; OriginalAmount - DiscountAmount
	Currency       string

	PaymentMethod PaymentMethod
	Status        PaymentStatus

	ExternalID        *string // gateway-assigned id after confirmation
	ExternalReference *string // our reference sent to the gateway
	ReceiptURL        *string

	// TransactionData is an append-only record of gateway payloads; writes
	// merge keys, never replace the whole bag.
	TransactionData map[string]interface{}
	Metadata        map[string]interface{}

	FailureReason       *string
	RefundReason        *string
	CancellationReason  *string
	ChargebackReason    *string
	RefundedBy          *string
	RefundTransactionID *string

	ProcessedAt  *time.Time
	PaidAt       *time.Time
	RefundedAt   *time.Time
	CancelledAt  *time.Time
	ChargebackAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the creation invariants. It is called before the first
// persist; later mutations only move the status.
func (p *Payment) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if p.PlanID == "" {
		return fmt.Errorf("%w: plan id is required", domain.ErrValidation)
	}
	if p.Amount < MinAmount || p.Amount > MaxAmount {
		return fmt.Errorf("%w: amount must be between %d and %d cents", domain.ErrValidation, MinAmount, MaxAmount)
	}
	if !ValidCurrencies[p.Currency] {
		return fmt.Errorf("%w: unsupported currency %q", domain.ErrValidation, p.Currency)
	}
	if !validPaymentMethods[p.PaymentMethod] {
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, p.PaymentMethod)
	}
	if p.OriginalAmount <= 0 || p.OriginalAmount > MaxAmount {
		return fmt.Errorf("%w: original amount must be positive and at most %d cents", domain.ErrValidation, MaxAmount)
	}
	if p.DiscountAmount < 0 || p.DiscountAmount > p.OriginalAmount {
		return fmt.Errorf("%w: discount must be non-negative and not exceed the original amount", domain.ErrValidation)
	}
	if p.Amount != p.OriginalAmount-p.DiscountAmount {
		return fmt.Errorf("%w: amount must equal original amount minus discount", domain.ErrValidation)
	}
	if p.Metadata != nil {
		b, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("%w: metadata is not serializable", domain.ErrValidation)
		}
		if len(b) > MaxMetadataSize {
			return fmt.Errorf("%w: metadata exceeds %d bytes", domain.ErrValidation, MaxMetadataSize)
		}
	}
	return nil
}

// PaymentPatch carries the columns touched by a status transition. Nil
// pointers leave the stored value untouched; TransactionData is merged.
type PaymentPatch struct {
	Status PaymentStatus

	ExternalID          *string
	ExternalReference   *string
	ReceiptURL          *string
	FailureReason       *string
	RefundReason        *string
	CancellationReason  *string
	ChargebackReason    *string
	RefundedBy          *string
	RefundTransactionID *string

	TransactionData map[string]interface{}

	ProcessedAt  *time.Time
	PaidAt       *time.Time
	RefundedAt   *time.Time
	CancelledAt  *time.Time
	ChargebackAt *time.Time
}
