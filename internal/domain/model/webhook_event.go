package model

import "time"

// Gateway event types we act on. Anything else is logged and dropped.
const (
	WebhookEventPaymentConfirmed  = "payment_confirmed"
	WebhookEventPaymentReceived   = "payment_received"
	WebhookEventPaymentAuthorized = "payment_authorized"
	WebhookEventPaymentCaptured   = "payment_captured"
	WebhookEventPaymentFailed     = "payment_failed"
	WebhookEventPaymentRejected   = "payment_rejected"
)

// WebhookEvent is the normalized form of a gateway callback, assigned a
// monotonic ingest id at the HTTP boundary before any processing happens.
type WebhookEvent struct {
	IngestID  string // ulid assigned at intake
	Gateway   string
	EventType string

	PaymentID            string
	GatewayTransactionID string
	AuthorizationCode    *string
	ErrorCode            *string
	ErrorMessage         *string
	EndToEndID           *string

	ReceivedAt time.Time
}
