package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/infra/metrics"
	"subscription-billing/internal/infra/worker"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// Accept validates the envelope, stamps an ingest id, and hands the
	// event to the worker pool. It returns before any processing so the
	// HTTP handler can acknowledge immediately; redelivery of the same
	// event is harmless either way.
	Accept(ctx context.Context, ev model.WebhookEvent) (string, error)
	// Process applies one event to the payment state machine. Exported so
	// tests and replay tooling can drive it synchronously.
	Process(ctx context.Context, ev model.WebhookEvent) error
}

type webhookUC struct {
	payments  PaymentUseCase
	transfers repository.InstantTransferRepository
	cards     repository.CardTransactionRepository
	deduper   adapter.EventDeduper
	pool      *worker.Pool

	gateways map[string]bool
	dedupTTL time.Duration
	logger   zerolog.Logger
}

func NewWebhookUseCase(
	payments PaymentUseCase,
	transfers repository.InstantTransferRepository,
	cards repository.CardTransactionRepository,
	deduper adapter.EventDeduper,
	pool *worker.Pool,
	gatewayNames []string,
	dedupTTL time.Duration,
	logger zerolog.Logger,
) *webhookUC {
	gw := make(map[string]bool, len(gatewayNames))
	for _, n := range gatewayNames {
		gw[n] = true
	}
	if dedupTTL <= 0 {
		dedupTTL = 24 * time.Hour
	}
	return &webhookUC{
		payments:  payments,
		transfers: transfers,
		cards:     cards,
		deduper:   deduper,
		pool:      pool,
		gateways:  gw,
		dedupTTL:  dedupTTL,
		logger:    logger.With().Str("component", "webhook_uc").Logger(),
	}
}

func (u *webhookUC) Accept(ctx context.Context, ev model.WebhookEvent) (string, error) {
	if !u.gateways[ev.Gateway] {
		metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "unknown_gateway")
		u.logger.Warn().Str("gateway", ev.Gateway).Str("event", ev.EventType).Msg("event from unknown gateway dropped")
		return "", fmt.Errorf("%w: unknown gateway %q", domain.ErrValidation, ev.Gateway)
	}
	if ev.PaymentID == "" && ev.GatewayTransactionID == "" {
		metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "malformed")
		u.logger.Warn().Str("gateway", ev.Gateway).Str("event", ev.EventType).Msg("event without any payment reference dropped")
		return "", fmt.Errorf("%w: event carries no payment reference", domain.ErrValidation)
	}

	ev.IngestID = ulid.Make().String()
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}

	task := func(taskCtx context.Context) error {
		return u.Process(taskCtx, ev)
	}
	if err := u.pool.Submit(task); err != nil {
		// queue saturated: run inline rather than lose the event
		u.logger.Warn().Str("ingest_id", ev.IngestID).Msg("worker queue full, processing inline")
		go func() {
			if err := u.Process(context.Background(), ev); err != nil {
				u.logger.Error().Err(err).Str("ingest_id", ev.IngestID).Msg("inline processing failed")
			}
		}()
	}
	metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "accepted")
	return ev.IngestID, nil
}

func (u *webhookUC) Process(ctx context.Context, ev model.WebhookEvent) error {
	log := u.logger.With().Str("ingest_id", ev.IngestID).Str("gateway", ev.Gateway).
		Str("event", ev.EventType).Logger()

	key := fmt.Sprintf("wh:%s:%s:%s", ev.Gateway, ev.GatewayTransactionID, ev.EventType)
	first, err := u.deduper.MarkOnce(ctx, key, u.dedupTTL)
	if err != nil {
		// dedup store down: proceed, the conditional updates stay safe
		log.Warn().Err(err).Msg("dedup marker unavailable, processing anyway")
	} else if !first {
		metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "duplicate")
		log.Debug().Msg("duplicate event dropped")
		return nil
	}

	p, err := u.resolvePayment(ctx, ev)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "orphan")
			log.Warn().Str("payment_id", ev.PaymentID).Str("txid", ev.GatewayTransactionID).
				Msg("event references no known payment, dropped")
			return nil
		}
		return err
	}
	log = log.With().Str("payment_id", p.ID).Logger()

	switch ev.EventType {
	case model.WebhookEventPaymentConfirmed, model.WebhookEventPaymentReceived:
		err = u.approve(ctx, p, ev)
	case model.WebhookEventPaymentAuthorized:
		err = u.authorizeCard(ctx, p, ev)
	case model.WebhookEventPaymentCaptured:
		if err = u.captureCard(ctx, p, ev); err == nil {
			err = u.approve(ctx, p, ev)
		}
	case model.WebhookEventPaymentFailed, model.WebhookEventPaymentRejected:
		reason := "payment failed at gateway"
		if ev.ErrorMessage != nil && *ev.ErrorMessage != "" {
			reason = *ev.ErrorMessage
		}
		_, err = u.payments.Reject(ctx, p.ID, reason)
	default:
		metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "unknown_event")
		log.Warn().Msg("unknown event type dropped")
		return nil
	}

	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			// stale or out-of-order delivery; the state machine already moved on
			metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "stale")
			log.Info().Err(err).Msg("event arrived too late, dropped")
			return nil
		}
		metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "error")
		return err
	}
	metrics.IncWebhookEvent(ev.Gateway, ev.EventType, "processed")
	return nil
}

func (u *webhookUC) resolvePayment(ctx context.Context, ev model.WebhookEvent) (*model.Payment, error) {
	if ev.PaymentID != "" {
		return u.payments.GetByID(ctx, ev.PaymentID)
	}
	// correlate through the instant-transfer txid, then the external id
	if it, err := u.transfers.FindByTxID(ctx, nil, ev.GatewayTransactionID); err == nil {
		return u.payments.GetByID(ctx, it.PaymentID)
	}
	return u.payments.FindByExternalID(ctx, ev.GatewayTransactionID)
}

func (u *webhookUC) approve(ctx context.Context, p *model.Payment, ev model.WebhookEvent) error {
	txData := map[string]interface{}{
		"gateway":    ev.Gateway,
		"event":      ev.EventType,
		"ingest_id":  ev.IngestID,
		"gateway_tx": ev.GatewayTransactionID,
	}
	var extID *string
	if ev.GatewayTransactionID != "" {
		v := ev.GatewayTransactionID
		extID = &v
	}
	_, err := u.payments.Approve(ctx, p.ID, ApproveInput{
		ExternalID:      extID,
		EndToEndID:      ev.EndToEndID,
		TransactionData: txData,
	})
	return err
}

// authorizeCard records the first leg of the two-phase card flow; the parent
// payment stays pending until capture.
func (u *webhookUC) authorizeCard(ctx context.Context, p *model.Payment, ev model.WebhookEvent) error {
	ct, err := u.cards.FindByPaymentID(ctx, nil, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // authorization for a payment without a card record
		}
		return err
	}
	_, err = u.cards.UpdateStatusIf(ctx, nil, ct.ID,
		[]model.CardTransactionStatus{model.CardTransactionStatusPending},
		model.CardTransactionStatusAuthorized, ev.AuthorizationCode)
	return err
}

func (u *webhookUC) captureCard(ctx context.Context, p *model.Payment, ev model.WebhookEvent) error {
	ct, err := u.cards.FindByPaymentID(ctx, nil, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // capture event for a non-card payment; parent approval decides
		}
		return err
	}
	_, err = u.cards.UpdateStatusIf(ctx, nil, ct.ID,
		[]model.CardTransactionStatus{model.CardTransactionStatusAuthorized, model.CardTransactionStatusPending},
		model.CardTransactionStatusCaptured, ev.AuthorizationCode)
	return err
}
