package model

import "time"

type NotificationKind string

const (
	NotificationPaymentApproved   NotificationKind = "payment_approved"
	NotificationPaymentRejected   NotificationKind = "payment_rejected"
	NotificationPaymentRefunded   NotificationKind = "payment_refunded"
	NotificationPaymentCancelled  NotificationKind = "payment_cancelled"
	NotificationPaymentChargeback NotificationKind = "payment_chargeback"
	NotificationPlanActivated     NotificationKind = "plan_activated"
	NotificationPlanExpired       NotificationKind = "plan_expired"
	NotificationPlanCancelled     NotificationKind = "plan_cancelled"
)

// Notification is the audit record of a user-facing message. Delivery is
// fire-and-forget; a failed send is logged and never fails the transition
// that triggered it.
type Notification struct {
	ID        string
	UserID    string
	PaymentID *string
	Kind      NotificationKind
	Title     string
	Message   string
	CreatedAt time.Time
}
