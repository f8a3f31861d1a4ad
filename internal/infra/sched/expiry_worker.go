package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"subscription-billing/internal/usecase"
)

// ExpiryWorker periodically sweeps overdue entitlements via the use case.
type ExpiryWorker struct {
	interval  time.Duration
	userPlans usecase.UserPlanUseCase
	log       *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, userPlans usecase.UserPlanUseCase, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval:  interval,
		userPlans: userPlans,
		log:       &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			res, err := w.userPlans.ExpireDue(ctx, time.Now())
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
				continue
			}
			if res.ExpiredCount > 0 {
				w.log.Info().
					Int("processed", res.ProcessedCount).
					Int("expired", res.ExpiredCount).
					Msg("overdue entitlements expired")
			}
		}
	}
}
