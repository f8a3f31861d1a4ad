//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
)

type fixture struct {
	payments  *mockPaymentRepo
	transfers *mockInstantTransferRepo
	cards     *mockCardTransactionRepo
	plans     *mockPlanRepo
	coupons   *mockCouponRepo
	userPlans *mockUserPlanRepo
	gateway   *mockGateway
	notifier  *mockNotifier

	paymentUC  PaymentUseCase
	userPlanUC UserPlanUseCase
	couponUC   CouponUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		payments:  newMockPaymentRepo(),
		transfers: newMockInstantTransferRepo(),
		cards:     newMockCardTransactionRepo(),
		plans:     newMockPlanRepo(),
		coupons:   newMockCouponRepo(),
		userPlans: newMockUserPlanRepo(),
		gateway:   &mockGateway{},
		notifier:  &mockNotifier{},
	}
	f.couponUC = NewCouponUseCase(f.coupons)
	f.userPlanUC = NewUserPlanUseCase(f.userPlans)
	f.paymentUC = NewPaymentUseCase(
		f.payments, f.transfers, f.cards, f.plans,
		f.couponUC, f.userPlanUC, f.gateway, f.notifier,
		&mockTxManager{}, 30*time.Minute, zerolog.Nop(),
	)
	f.plans.plans["plan-1"] = &model.Plan{
		ID: "plan-1", Name: "Pro", Price: 10000, Currency: "BRL",
		DurationDays: 30, Interval: model.PlanIntervalMonthly,
		IsActive: true, IsPublic: true,
	}
	return f
}

func (f *fixture) create(t *testing.T, in CreatePaymentInput) *model.Payment {
	t.Helper()
	p, err := f.paymentUC.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return p
}

func (f *fixture) userPlanOf(t *testing.T, p *model.Payment) *model.UserPlan {
	t.Helper()
	if p.UserPlanID == nil {
		t.Fatal("payment has no linked user plan")
	}
	up, err := f.userPlanUC.GetByID(context.Background(), *p.UserPlanID)
	if err != nil {
		t.Fatalf("load user plan: %v", err)
	}
	return up
}

func defaultInput() CreatePaymentInput {
	return CreatePaymentInput{
		UserID: "user-1",
		PlanID: "plan-1",
		Method: model.PaymentMethodInstantTransfer,
	}
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		if p.Status != model.PaymentStatusPending {
			t.Errorf("status = %s, want PENDING", p.Status)
		}
		if p.Amount != 10000 || p.OriginalAmount != 10000 || p.DiscountAmount != 0 {
			t.Errorf("amounts = %d/%d/%d", p.OriginalAmount, p.DiscountAmount, p.Amount)
		}
		up := f.userPlanOf(t, p)
		if up.Status != model.UserPlanStatusPendingPayment {
			t.Errorf("user plan status = %s, want pending-payment", up.Status)
		}
	})

	t.Run("with percentage coupon", func(t *testing.T) {
		f := newFixture(t)
		f.coupons.coupons["c1"] = &model.Coupon{
			ID: "c1", Code: "SAVE20", DiscountType: model.DiscountTypePercentage,
			DiscountValue: 20, IsActive: true,
		}
		in := defaultInput()
		in.CouponCode = "save20"
		p := f.create(t, in)
		if p.DiscountAmount != 2000 || p.Amount != 8000 {
			t.Errorf("discount/amount = %d/%d, want 2000/8000", p.DiscountAmount, p.Amount)
		}
		c, _ := f.coupons.FindByID(ctx, nil, "c1")
		if c.TimesUsed != 1 {
			t.Errorf("timesUsed = %d, want 1", c.TimesUsed)
		}
	})

	t.Run("coupon at cap fails the purchase", func(t *testing.T) {
		f := newFixture(t)
		one := 1
		f.coupons.coupons["c1"] = &model.Coupon{
			ID: "c1", Code: "ONCE", DiscountType: model.DiscountTypePercentage,
			DiscountValue: 10, IsActive: true, MaxUses: &one, TimesUsed: 1,
		}
		in := defaultInput()
		in.CouponCode = "ONCE"
		_, err := f.paymentUC.Create(ctx, in)
		if !errors.Is(err, domain.ErrCouponUsageCap) {
			t.Fatalf("want ErrCouponUsageCap, got %v", err)
		}
	})

	t.Run("inactive plan", func(t *testing.T) {
		f := newFixture(t)
		f.plans.plans["plan-1"].IsActive = false
		_, err := f.paymentUC.Create(ctx, defaultInput())
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newFixture(t)
		in := defaultInput()
		in.PlanID = "nope"
		_, err := f.paymentUC.Create(ctx, in)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("instant transfer yields a pay code", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		res, err := f.paymentUC.Process(ctx, p.ID)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if res.PayCode == nil || res.PayCode.Code == "" {
			t.Fatal("expected pay code material")
		}
		it, err := f.transfers.FindByPaymentID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("transfer not saved: %v", err)
		}
		if it.Status != model.InstantTransferStatusActive {
			t.Errorf("transfer status = %s, want active", it.Status)
		}
		got, _ := f.payments.FindByID(ctx, nil, p.ID)
		if got.ExternalReference == nil || *got.ExternalReference != it.TxID {
			t.Error("payment should carry the gateway txid as external reference")
		}
	})

	t.Run("admin grant auto-approves", func(t *testing.T) {
		f := newFixture(t)
		in := defaultInput()
		in.Method = model.PaymentMethodAdminGrant
		p := f.create(t, in)
		res, err := f.paymentUC.Process(ctx, p.ID)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if res.Payment.Status != model.PaymentStatusApproved {
			t.Errorf("status = %s, want APPROVED", res.Payment.Status)
		}
		up := f.userPlanOf(t, res.Payment)
		if up.Status != model.UserPlanStatusActive {
			t.Errorf("user plan status = %s, want active", up.Status)
		}
	})

	t.Run("processing a non-pending payment fails", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		if _, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{}); err != nil {
			t.Fatalf("approve: %v", err)
		}
		_, err := f.paymentUC.Process(ctx, p.ID)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("want ErrInvalidTransition, got %v", err)
		}
	})
}

func TestApprovePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("activates the entitlement", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		got, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{})
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if got.Status != model.PaymentStatusApproved {
			t.Errorf("status = %s, want APPROVED", got.Status)
		}
		if got.PaidAt == nil {
			t.Error("paidAt should be stamped")
		}
		up := f.userPlanOf(t, got)
		if up.Status != model.UserPlanStatusActive {
			t.Errorf("user plan status = %s, want active", up.Status)
		}
		if up.LastPaymentID == nil || *up.LastPaymentID != p.ID {
			t.Error("lastPaymentID should point at the approving payment")
		}
	})

	t.Run("trial when trialEndsAt is in the future", func(t *testing.T) {
		f := newFixture(t)
		trial := time.Now().Add(7 * 24 * time.Hour)
		in := defaultInput()
		in.TrialEndsAt = &trial
		p := f.create(t, in)
		if _, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{}); err != nil {
			t.Fatalf("approve: %v", err)
		}
		up := f.userPlanOf(t, p)
		if up.Status != model.UserPlanStatusTrial {
			t.Errorf("user plan status = %s, want trial", up.Status)
		}
	})

	t.Run("duplicate approve is a no-op with one notification", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		if _, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{}); err != nil {
			t.Fatalf("first approve: %v", err)
		}
		got, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{})
		if err != nil {
			t.Fatalf("second approve: %v", err)
		}
		if got.Status != model.PaymentStatusApproved {
			t.Errorf("status = %s, want APPROVED", got.Status)
		}
		if n := f.notifier.count(model.NotificationPaymentApproved); n != 1 {
			t.Errorf("approved notifications = %d, want 1", n)
		}
	})

	t.Run("approve after refund fails", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		if _, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{}); err != nil {
			t.Fatal(err)
		}
		if _, err := f.paymentUC.Refund(ctx, p.ID, "duplicate charge", "admin-1"); err != nil {
			t.Fatal(err)
		}
		_, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{})
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("want ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("approval survives a broken entitlement", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		// the linked plan goes away before the gateway confirms
		if _, err := f.userPlanUC.Cancel(ctx, nil, *p.UserPlanID, "user gave up"); err != nil {
			t.Fatal(err)
		}
		got, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{})
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if got.Status != model.PaymentStatusApproved {
			t.Errorf("status = %s, want APPROVED", got.Status)
		}
		up := f.userPlanOf(t, got)
		if up.Status != model.UserPlanStatusCancelled {
			t.Errorf("user plan status = %s, want cancelled", up.Status)
		}
	})

	t.Run("renewal extends an already active plan", func(t *testing.T) {
		f := newFixture(t)
		first := f.create(t, defaultInput())
		if _, err := f.paymentUC.Approve(ctx, first.ID, ApproveInput{}); err != nil {
			t.Fatal(err)
		}
		up := f.userPlanOf(t, first)
		endBefore := up.EndDate

		// renewal charge lands on the same entitlement
		renewal := f.create(t, defaultInput())
		renewal.UserPlanID = &up.ID
		if err := f.payments.Save(ctx, nil, renewal); err != nil {
			t.Fatal(err)
		}
		if _, err := f.paymentUC.Approve(ctx, renewal.ID, ApproveInput{}); err != nil {
			t.Fatal(err)
		}
		after := f.userPlanOf(t, renewal)
		if !after.EndDate.After(endBefore) {
			t.Error("renewal should extend the end date")
		}
		if after.Status != model.UserPlanStatusActive {
			t.Errorf("status = %s, want active", after.Status)
		}
	})
}

func TestRejectPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, defaultInput())
	got, err := f.paymentUC.Reject(ctx, p.ID, "card declined")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != model.PaymentStatusRejected {
		t.Errorf("status = %s, want REJECTED", got.Status)
	}
	if got.FailureReason == nil || *got.FailureReason != "card declined" {
		t.Error("failure reason should be recorded")
	}
	// the entitlement stays open for a retry
	up := f.userPlanOf(t, got)
	if up.Status != model.UserPlanStatusPendingPayment {
		t.Errorf("user plan status = %s, want pending-payment", up.Status)
	}

	// retry reopens the payment
	reopened, err := f.paymentUC.Retry(ctx, p.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if reopened.Status != model.PaymentStatusPending {
		t.Errorf("status = %s, want PENDING", reopened.Status)
	}
}

func TestRefundPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, defaultInput())
	if _, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{}); err != nil {
		t.Fatal(err)
	}
	got, err := f.paymentUC.Refund(ctx, p.ID, "user request", "admin-1")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if got.Status != model.PaymentStatusRefunded {
		t.Errorf("status = %s, want REFUNDED", got.Status)
	}
	up := f.userPlanOf(t, got)
	if up.Status != model.UserPlanStatusCancelled {
		t.Errorf("user plan status = %s, want cancelled", up.Status)
	}

	t.Run("refund of a pending payment fails", func(t *testing.T) {
		f := newFixture(t)
		p := f.create(t, defaultInput())
		_, err := f.paymentUC.Refund(ctx, p.ID, "nope", "admin-1")
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("want ErrInvalidTransition, got %v", err)
		}
	})
}

func TestCancelPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, defaultInput())
	if _, err := f.paymentUC.Process(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	got, err := f.paymentUC.Cancel(ctx, p.ID, "changed my mind")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != model.PaymentStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", got.Status)
	}
	it, _ := f.transfers.FindByPaymentID(ctx, nil, p.ID)
	if it.Status != model.InstantTransferStatusCancelled {
		t.Errorf("transfer status = %s, want cancelled", it.Status)
	}
	up := f.userPlanOf(t, got)
	if up.Status != model.UserPlanStatusCancelled {
		t.Errorf("user plan status = %s, want cancelled", up.Status)
	}
}

func TestChargeback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, defaultInput())
	if _, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{}); err != nil {
		t.Fatal(err)
	}
	got, err := f.paymentUC.Chargeback(ctx, p.ID, "cardholder dispute")
	if err != nil {
		t.Fatalf("chargeback: %v", err)
	}
	if got.Status != model.PaymentStatusChargeback {
		t.Errorf("status = %s, want CHARGEBACK", got.Status)
	}
	up := f.userPlanOf(t, got)
	if up.Status != model.UserPlanStatusSuspended {
		t.Errorf("user plan status = %s, want suspended", up.Status)
	}

	resolved, err := f.paymentUC.ResolveChargeback(ctx, p.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != model.PaymentStatusApproved {
		t.Errorf("status = %s, want APPROVED", resolved.Status)
	}
	up = f.userPlanOf(t, resolved)
	if up.Status != model.UserPlanStatusActive {
		t.Errorf("user plan status = %s, want active", up.Status)
	}
}

func TestExpireStaleInstantTransfers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, defaultInput())
	if _, err := f.paymentUC.Process(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	it, _ := f.transfers.FindByPaymentID(ctx, nil, p.ID)
	f.transfers.mu.Lock()
	f.transfers.transfers[it.ID].ExpirationDate = time.Now().Add(-time.Hour)
	f.transfers.mu.Unlock()

	n, err := f.paymentUC.ExpireStaleInstantTransfers(ctx, 100)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}
	it, _ = f.transfers.FindByPaymentID(ctx, nil, p.ID)
	if it.Status != model.InstantTransferStatusExpired {
		t.Errorf("transfer status = %s, want expired", it.Status)
	}
	got, _ := f.payments.FindByID(ctx, nil, p.ID)
	if got.Status != model.PaymentStatusRejected {
		t.Errorf("payment status = %s, want REJECTED", got.Status)
	}
	if got.FailureReason == nil || *got.FailureReason != "instant transfer expired" {
		t.Error("failure reason should say the transfer expired")
	}

	// a second sweep finds nothing
	n, err = f.paymentUC.ExpireStaleInstantTransfers(ctx, 100)
	if err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}
}

func TestConcurrentApproveActivatesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.create(t, defaultInput())

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := f.paymentUC.Approve(ctx, p.ID, ApproveInput{})
			done <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("approve: %v", err)
		}
	}
	got, _ := f.payments.FindByID(ctx, nil, p.ID)
	if got.Status != model.PaymentStatusApproved {
		t.Errorf("status = %s, want APPROVED", got.Status)
	}
	if n := f.notifier.count(model.NotificationPaymentApproved); n != 1 {
		t.Errorf("approved notifications = %d, want 1", n)
	}
}
