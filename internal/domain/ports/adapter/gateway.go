package adapter

import (
	"context"
	"time"
)

// PayCode is the material a gateway hands back when an instant-transfer
// charge is created: a copy-paste code, a URL for the same code, and the
// gateway's transaction id used to correlate later webhooks.
type PayCode struct {
	TxID           string
	Code           string
	CodeURL        string
	ExpirationDate time.Time
}

// GatewayClient abstracts the external payment provider. Only charge
// creation goes outbound; everything else arrives via webhooks.
type GatewayClient interface {
	Name() string
	CreatePayCode(ctx context.Context, paymentID string, amount int64, currency string, expiresIn time.Duration) (*PayCode, error)
}
