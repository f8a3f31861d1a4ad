package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	"subscription-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// CreatePaymentInput collects everything needed to open a purchase.
type CreatePaymentInput struct {
	UserID      string
	PlanID      string
	Method      model.PaymentMethod
	CouponCode  string
	AutoRenew   bool
	TrialEndsAt *time.Time
	Metadata    map[string]interface{}
}

// ApproveInput carries the gateway confirmation details applied on approval.
type ApproveInput struct {
	ExternalID      *string
	ReceiptURL      *string
	EndToEndID      *string
	TransactionData map[string]interface{}
}

// ProcessResult is what Process hands back to the caller; for
// instant-transfer it contains the pay-code material to show the user.
type ProcessResult struct {
	Payment *model.Payment
	PayCode *adapter.PayCode
}

type PaymentUseCase interface {
	// Create opens a payment in PENDING together with its pending-payment
	// entitlement, redeeming the coupon (if any) in the same transaction.
	Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error)
	// Process dispatches on the payment method: instant-transfer asks the
	// gateway for a pay code, admin-grant and free are approved on the
	// spot, card and bank-slip wait for the gateway to call back.
	Process(ctx context.Context, paymentID string) (*ProcessResult, error)

	Approve(ctx context.Context, paymentID string, in ApproveInput) (*model.Payment, error)
	Reject(ctx context.Context, paymentID, reason string) (*model.Payment, error)
	Refund(ctx context.Context, paymentID, reason, refundedBy string) (*model.Payment, error)
	Cancel(ctx context.Context, paymentID, reason string) (*model.Payment, error)
	// Retry reopens a rejected or cancelled payment for another attempt.
	Retry(ctx context.Context, paymentID string) (*model.Payment, error)
	Chargeback(ctx context.Context, paymentID, reason string) (*model.Payment, error)
	ResolveChargeback(ctx context.Context, paymentID string) (*model.Payment, error)

	// ExpireStaleInstantTransfers rejects payments whose pay code lapsed
	// unpaid; the reconciler loop drives it.
	ExpireStaleInstantTransfers(ctx context.Context, limit int) (int, error)

	GetByID(ctx context.Context, id string) (*model.Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Payment, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]*model.Payment, error)
}

type paymentUC struct {
	payments  repository.PaymentRepository
	transfers repository.InstantTransferRepository
	cards     repository.CardTransactionRepository
	plans     repository.PlanRepository
	coupons   CouponUseCase
	userPlans UserPlanUseCase
	gateway   adapter.GatewayClient
	notifier  adapter.Notifier
	txm       repository.TransactionManager

	payCodeTTL time.Duration
	logger     zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	transfers repository.InstantTransferRepository,
	cards repository.CardTransactionRepository,
	plans repository.PlanRepository,
	coupons CouponUseCase,
	userPlans UserPlanUseCase,
	gateway adapter.GatewayClient,
	notifier adapter.Notifier,
	txm repository.TransactionManager,
	payCodeTTL time.Duration,
	logger zerolog.Logger,
) *paymentUC {
	if payCodeTTL <= 0 {
		payCodeTTL = 30 * time.Minute
	}
	return &paymentUC{
		payments:   payments,
		transfers:  transfers,
		cards:      cards,
		plans:      plans,
		coupons:    coupons,
		userPlans:  userPlans,
		gateway:    gateway,
		notifier:   notifier,
		txm:        txm,
		payCodeTTL: payCodeTTL,
		logger:     logger.With().Str("component", "payment_uc").Logger(),
	}
}

func (u *paymentUC) Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error) {
	var created *model.Payment
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		plan, err := u.plans.FindByID(ctx, tx, in.PlanID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return fmt.Errorf("%w: plan %q is not available for purchase", domain.ErrValidation, plan.ID)
		}

		original := plan.Price
		var discount int64
		var couponID *string
		if in.CouponCode != "" {
			coupon, d, err := u.coupons.Validate(ctx, tx, in.CouponCode, plan.ID, original)
			if err != nil {
				return err
			}
			discount = d
			couponID = &coupon.ID
		}
		amount := original - discount
		if amount == 0 && in.Method != model.PaymentMethodFree && in.Method != model.PaymentMethodAdminGrant {
			// a full discount turns the purchase into a free grant
			in.Method = model.PaymentMethodFree
		}

		up, err := u.userPlans.Create(ctx, tx, in.UserID, plan, in.Method, in.AutoRenew, in.TrialEndsAt)
		if err != nil {
			return err
		}

		now := time.Now()
		p := &model.Payment{
			ID:             uuid.NewString(),
			UserID:         in.UserID,
			PlanID:         plan.ID,
			UserPlanID:     &up.ID,
			CouponID:       couponID,
			OriginalAmount: original,
			DiscountAmount: discount,
			Amount:         amount,
			Currency:       plan.Currency,
			PaymentMethod:  in.Method,
			Status:         model.PaymentStatusPending,
			Metadata:       in.Metadata,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if amount > 0 {
			if err := p.Validate(); err != nil {
				return err
			}
		} else if plan.IsFree() || discount == original {
			// zero-amount grants skip the amount range check but keep the rest
			if p.UserID == "" || p.PlanID == "" {
				return fmt.Errorf("%w: user and plan are required", domain.ErrValidation)
			}
		}
		if err := u.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		if couponID != nil {
			if err := u.coupons.Redeem(ctx, tx, *couponID); err != nil {
				return err
			}
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info().Str("payment_id", created.ID).Str("user_id", created.UserID).
		Str("method", string(created.PaymentMethod)).Int64("amount", created.Amount).
		Msg("payment created")
	return created, nil
}

func (u *paymentUC) Process(ctx context.Context, paymentID string) (*ProcessResult, error) {
	p, err := u.payments.FindByID(ctx, nil, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusPending {
		return nil, fmt.Errorf("cannot process a payment in status %q: %w", p.Status, domain.ErrInvalidTransition)
	}

	switch p.PaymentMethod {
	case model.PaymentMethodInstantTransfer:
		return u.processInstantTransfer(ctx, p)
	case model.PaymentMethodAdminGrant:
		return u.autoApprove(ctx, p, "admin_approval")
	case model.PaymentMethodFree:
		return u.autoApprove(ctx, p, "free_plan")
	default:
		// card / bank-slip / other: the outcome arrives via webhook
		now := time.Now()
		_, err := u.payments.UpdateStatusIf(ctx, nil, p.ID,
			[]model.PaymentStatus{model.PaymentStatusPending},
			model.PaymentPatch{Status: model.PaymentStatusPending, ProcessedAt: &now})
		if err != nil {
			return nil, err
		}
		p.ProcessedAt = &now
		return &ProcessResult{Payment: p}, nil
	}
}

func (u *paymentUC) processInstantTransfer(ctx context.Context, p *model.Payment) (*ProcessResult, error) {
	code, err := u.gateway.CreatePayCode(ctx, p.ID, p.Amount, p.Currency, u.payCodeTTL)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	it := &model.InstantTransfer{
		ID:             uuid.NewString(),
		PaymentID:      p.ID,
		TxID:           code.TxID,
		PayCode:        code.Code,
		PayCodeURL:     code.CodeURL,
		ExpirationDate: code.ExpirationDate,
		Status:         model.InstantTransferStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.transfers.Save(ctx, nil, it); err != nil {
		return nil, err
	}
	_, err = u.payments.UpdateStatusIf(ctx, nil, p.ID,
		[]model.PaymentStatus{model.PaymentStatusPending},
		model.PaymentPatch{
			Status:            model.PaymentStatusPending,
			ExternalReference: &code.TxID,
			ProcessedAt:       &now,
			TransactionData:   map[string]interface{}{"txid": code.TxID, "gateway": u.gateway.Name()},
		})
	if err != nil {
		return nil, err
	}
	p.ExternalReference = &code.TxID
	p.ProcessedAt = &now
	return &ProcessResult{Payment: p, PayCode: code}, nil
}

func (u *paymentUC) autoApprove(ctx context.Context, p *model.Payment, marker string) (*ProcessResult, error) {
	approved, err := u.Approve(ctx, p.ID, ApproveInput{
		ExternalID:      &marker,
		TransactionData: map[string]interface{}{"source": marker},
	})
	if err != nil {
		return nil, err
	}
	return &ProcessResult{Payment: approved}, nil
}

func (u *paymentUC) Approve(ctx context.Context, paymentID string, in ApproveInput) (*model.Payment, error) {
	var out *model.Payment
	var won bool
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status == model.PaymentStatusApproved {
			out = p
			return nil // duplicate confirmation; nothing to do
		}
		if !p.Status.CanTransition(model.PaymentStatusApproved) {
			return fmt.Errorf("cannot approve a payment in status %q: %w", p.Status, domain.ErrInvalidTransition)
		}

		// absorb duplicates on the sub-record first
		if p.PaymentMethod == model.PaymentMethodInstantTransfer {
			it, err := u.transfers.FindByPaymentID(ctx, tx, p.ID)
			if err == nil {
				_, err = u.transfers.UpdateStatusIf(ctx, tx, it.ID,
					[]model.InstantTransferStatus{model.InstantTransferStatusActive},
					model.InstantTransferStatusCompleted, in.EndToEndID)
				if err != nil {
					return err
				}
			}
		}

		now := time.Now()
		expected := []model.PaymentStatus{p.Status}
		patch := model.PaymentPatch{
			Status:          model.PaymentStatusApproved,
			ExternalID:      in.ExternalID,
			ReceiptURL:      in.ReceiptURL,
			TransactionData: in.TransactionData,
			PaidAt:          &now,
			ProcessedAt:     &now,
		}
		changed, err := u.payments.UpdateStatusIf(ctx, tx, p.ID, expected, patch)
		if err != nil {
			return err
		}
		if !changed {
			cur, err := u.payments.FindByID(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if cur.Status == model.PaymentStatusApproved {
				out = cur
				return nil
			}
			return fmt.Errorf("cannot approve a payment in status %q: %w", cur.Status, domain.ErrInvalidTransition)
		}

		// money already moved; a broken entitlement must not undo the approval
		if p.UserPlanID != nil {
			if err := u.settleEntitlement(ctx, tx, p); err != nil {
				u.logger.Error().Err(err).Str("payment_id", p.ID).Str("user_plan_id", *p.UserPlanID).Msg("entitlement update on approval failed")
			}
		}

		p.Status = model.PaymentStatusApproved
		p.PaidAt = &now
		p.ProcessedAt = &now
		if in.ExternalID != nil {
			p.ExternalID = in.ExternalID
		}
		out = p
		won = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if won {
		u.notify(ctx, out, model.NotificationPaymentApproved, "Payment approved", "Your payment was approved and your plan is now active.")
	}
	return out, nil
}

// settleEntitlement activates a fresh entitlement or renews one that is
// already running (auto-renew charge landing on an active plan).
func (u *paymentUC) settleEntitlement(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	up, err := u.userPlans.GetForUpdate(ctx, tx, *p.UserPlanID)
	if err != nil {
		return err
	}
	if up.Status == model.UserPlanStatusActive {
		plan, err := u.plans.FindByID(ctx, tx, p.PlanID)
		if err != nil {
			return err
		}
		_, err = u.userPlans.Renew(ctx, tx, up.ID, plan, p.ID)
		return err
	}
	_, err = u.userPlans.Activate(ctx, tx, up.ID, p.ID)
	return err
}

func (u *paymentUC) Reject(ctx context.Context, paymentID, reason string) (*model.Payment, error) {
	var out *model.Payment
	var won bool
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status == model.PaymentStatusRejected {
			out = p
			return nil
		}
		if !p.Status.CanTransition(model.PaymentStatusRejected) {
			return fmt.Errorf("cannot reject a payment in status %q: %w", p.Status, domain.ErrInvalidTransition)
		}
		changed, err := u.payments.UpdateStatusIf(ctx, tx, p.ID,
			[]model.PaymentStatus{model.PaymentStatusPending},
			model.PaymentPatch{Status: model.PaymentStatusRejected, FailureReason: &reason})
		if err != nil {
			return err
		}
		if !changed {
			cur, err := u.payments.FindByID(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if cur.Status == model.PaymentStatusRejected {
				out = cur
				return nil
			}
			return fmt.Errorf("cannot reject a payment in status %q: %w", cur.Status, domain.ErrInvalidTransition)
		}
		// the entitlement stays in pending-payment so the user can retry
		p.Status = model.PaymentStatusRejected
		p.FailureReason = &reason
		out = p
		won = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if won {
		u.notify(ctx, out, model.NotificationPaymentRejected, "Payment rejected", "Your payment was declined. You can try again with another method.")
	}
	return out, nil
}

func (u *paymentUC) Refund(ctx context.Context, paymentID, reason, refundedBy string) (*model.Payment, error) {
	now := time.Now()
	refundTxID := uuid.NewString()
	p, won, err := u.closeOut(ctx, paymentID, model.PaymentStatusRefunded,
		[]model.PaymentStatus{model.PaymentStatusApproved},
		model.PaymentPatch{
			Status:              model.PaymentStatusRefunded,
			RefundReason:        &reason,
			RefundedBy:          &refundedBy,
			RefundTransactionID: &refundTxID,
			RefundedAt:          &now,
		},
		"refund", true)
	if err != nil {
		return nil, err
	}
	if won {
		u.notify(ctx, p, model.NotificationPaymentRefunded, "Payment refunded", "Your payment was refunded and your plan was cancelled.")
	}
	return p, nil
}

func (u *paymentUC) Cancel(ctx context.Context, paymentID, reason string) (*model.Payment, error) {
	now := time.Now()
	p, won, err := u.closeOut(ctx, paymentID, model.PaymentStatusCancelled,
		[]model.PaymentStatus{model.PaymentStatusPending},
		model.PaymentPatch{
			Status:             model.PaymentStatusCancelled,
			CancellationReason: &reason,
			CancelledAt:        &now,
		},
		"cancel", true)
	if err != nil {
		return nil, err
	}
	if won {
		u.notify(ctx, p, model.NotificationPaymentCancelled, "Payment cancelled", "Your payment was cancelled.")
	}
	return p, nil
}

func (u *paymentUC) Retry(ctx context.Context, paymentID string) (*model.Payment, error) {
	var out *model.Payment
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status == model.PaymentStatusPending {
			out = p
			return nil
		}
		if !p.Status.CanTransition(model.PaymentStatusPending) {
			return fmt.Errorf("cannot retry a payment in status %q: %w", p.Status, domain.ErrInvalidTransition)
		}
		changed, err := u.payments.UpdateStatusIf(ctx, tx, p.ID,
			[]model.PaymentStatus{model.PaymentStatusRejected, model.PaymentStatusCancelled},
			model.PaymentPatch{Status: model.PaymentStatusPending})
		if err != nil {
			return err
		}
		if !changed {
			cur, err := u.payments.FindByID(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if cur.Status == model.PaymentStatusPending {
				out = cur
				return nil
			}
			return fmt.Errorf("cannot retry a payment in status %q: %w", cur.Status, domain.ErrInvalidTransition)
		}
		p.Status = model.PaymentStatusPending
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *paymentUC) Chargeback(ctx context.Context, paymentID, reason string) (*model.Payment, error) {
	now := time.Now()
	var out *model.Payment
	var won bool
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status == model.PaymentStatusChargeback {
			out = p
			return nil
		}
		if !p.Status.CanTransition(model.PaymentStatusChargeback) {
			return fmt.Errorf("cannot charge back a payment in status %q: %w", p.Status, domain.ErrInvalidTransition)
		}
		changed, err := u.payments.UpdateStatusIf(ctx, tx, p.ID,
			[]model.PaymentStatus{model.PaymentStatusApproved},
			model.PaymentPatch{Status: model.PaymentStatusChargeback, ChargebackReason: &reason, ChargebackAt: &now})
		if err != nil {
			return err
		}
		if !changed {
			cur, err := u.payments.FindByID(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if cur.Status == model.PaymentStatusChargeback {
				out = cur
				return nil
			}
			return fmt.Errorf("cannot charge back a payment in status %q: %w", cur.Status, domain.ErrInvalidTransition)
		}
		// access is withheld while the dispute runs, not revoked outright
		if p.UserPlanID != nil {
			if _, err := u.userPlans.Suspend(ctx, tx, *p.UserPlanID); err != nil {
				u.logger.Warn().Err(err).Str("user_plan_id", *p.UserPlanID).Msg("suspend on chargeback failed")
			}
		}
		p.Status = model.PaymentStatusChargeback
		p.ChargebackReason = &reason
		p.ChargebackAt = &now
		out = p
		won = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if won {
		u.notify(ctx, out, model.NotificationPaymentChargeback, "Payment disputed", "Your payment is under dispute; plan access is suspended meanwhile.")
	}
	return out, nil
}

func (u *paymentUC) ResolveChargeback(ctx context.Context, paymentID string) (*model.Payment, error) {
	var out *model.Payment
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status == model.PaymentStatusApproved {
			out = p
			return nil
		}
		if !p.Status.CanTransition(model.PaymentStatusApproved) {
			return fmt.Errorf("cannot resolve a payment in status %q: %w", p.Status, domain.ErrInvalidTransition)
		}
		changed, err := u.payments.UpdateStatusIf(ctx, tx, p.ID,
			[]model.PaymentStatus{model.PaymentStatusChargeback},
			model.PaymentPatch{Status: model.PaymentStatusApproved})
		if err != nil {
			return err
		}
		if !changed {
			cur, err := u.payments.FindByID(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if cur.Status == model.PaymentStatusApproved {
				out = cur
				return nil
			}
			return fmt.Errorf("cannot resolve a payment in status %q: %w", cur.Status, domain.ErrInvalidTransition)
		}
		if p.UserPlanID != nil {
			if _, err := u.userPlans.Resume(ctx, tx, *p.UserPlanID); err != nil {
				u.logger.Warn().Err(err).Str("user_plan_id", *p.UserPlanID).Msg("resume after dispute failed")
			}
		}
		p.Status = model.PaymentStatusApproved
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// closeOut is the shared path for refund and cancel: a conditional move to a
// closing status plus cancellation of the linked entitlement. The bool result
// reports whether this call performed the move.
func (u *paymentUC) closeOut(ctx context.Context, paymentID string, target model.PaymentStatus, expected []model.PaymentStatus, patch model.PaymentPatch, verb string, cancelPlan bool) (*model.Payment, bool, error) {
	var out *model.Payment
	var won bool
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status == target {
			out = p
			return nil
		}
		if !p.Status.CanTransition(target) {
			return fmt.Errorf("cannot %s a payment in status %q: %w", verb, p.Status, domain.ErrInvalidTransition)
		}
		changed, err := u.payments.UpdateStatusIf(ctx, tx, p.ID, expected, patch)
		if err != nil {
			return err
		}
		if !changed {
			cur, err := u.payments.FindByID(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			if cur.Status == target {
				out = cur
				return nil
			}
			return fmt.Errorf("cannot %s a payment in status %q: %w", verb, cur.Status, domain.ErrInvalidTransition)
		}

		if target == model.PaymentStatusCancelled && p.PaymentMethod == model.PaymentMethodInstantTransfer {
			if it, err := u.transfers.FindByPaymentID(ctx, tx, p.ID); err == nil {
				_, _ = u.transfers.UpdateStatusIf(ctx, tx, it.ID,
					[]model.InstantTransferStatus{model.InstantTransferStatusActive},
					model.InstantTransferStatusCancelled, nil)
			}
		}
		if cancelPlan && p.UserPlanID != nil {
			reason := fmt.Sprintf("payment %s", verb)
			if _, err := u.userPlans.Cancel(ctx, tx, *p.UserPlanID, reason); err != nil {
				// an already-cancelled plan is fine; anything else aborts
				if !errors.Is(err, domain.ErrConflict) {
					return err
				}
			}
		}
		p.Status = target
		out = p
		won = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, won, nil
}

func (u *paymentUC) ExpireStaleInstantTransfers(ctx context.Context, limit int) (int, error) {
	stale, err := u.transfers.ListExpiredActive(ctx, nil, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, it := range stale {
		err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			changed, err := u.transfers.UpdateStatusIf(ctx, tx, it.ID,
				[]model.InstantTransferStatus{model.InstantTransferStatusActive},
				model.InstantTransferStatusExpired, nil)
			if err != nil {
				return err
			}
			if !changed {
				return nil // paid or cancelled in the meantime
			}
			reason := "instant transfer expired"
			_, err = u.payments.UpdateStatusIf(ctx, tx, it.PaymentID,
				[]model.PaymentStatus{model.PaymentStatusPending},
				model.PaymentPatch{Status: model.PaymentStatusRejected, FailureReason: &reason})
			if err != nil {
				return err
			}
			expired++
			return nil
		})
		if err != nil {
			u.logger.Error().Err(err).Str("transfer_id", it.ID).Msg("expiring stale instant transfer failed")
		}
	}
	return expired, nil
}

func (u *paymentUC) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return u.payments.FindByID(ctx, nil, id)
}

func (u *paymentUC) FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error) {
	return u.payments.FindByExternalID(ctx, nil, externalID)
}

func (u *paymentUC) ListByUser(ctx context.Context, userID string) ([]*model.Payment, error) {
	return u.payments.FindByUser(ctx, nil, userID)
}

func (u *paymentUC) List(ctx context.Context, filter repository.PaymentFilter) ([]*model.Payment, error) {
	return u.payments.List(ctx, nil, filter)
}

func (u *paymentUC) notify(ctx context.Context, p *model.Payment, kind model.NotificationKind, title, message string) {
	if p == nil {
		return
	}
	if err := u.notifier.Notify(ctx, p.UserID, &p.ID, kind, title, message); err != nil {
		u.logger.Warn().Err(err).Str("payment_id", p.ID).Str("kind", string(kind)).Msg("notification failed")
	}
}
