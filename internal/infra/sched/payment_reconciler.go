package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-billing/internal/usecase"
)

// PaymentReconciler periodically rejects pending payments whose pay code has
// lapsed at the gateway. This covers users who requested a charge and walked
// away, and webhooks the gateway never delivered.
type PaymentReconciler struct {
	payments usecase.PaymentUseCase
	interval time.Duration
	batch    int
	log      *zerolog.Logger
}

func NewPaymentReconciler(payments usecase.PaymentUseCase, interval time.Duration, batch int, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	recLog := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{payments: payments, interval: interval, batch: batch, log: &recLog}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payment reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment reconciler")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.payments.ExpireStaleInstantTransfers(ctx, w.batch)
			if err != nil {
				w.log.Error().Err(err).Msg("reconciler sweep error")
				continue
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("stale instant transfers expired")
			}
		}
	}
}
