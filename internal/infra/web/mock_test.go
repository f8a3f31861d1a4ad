//go:build !integration

package web

import (
	"context"
	"time"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/repository"
	"subscription-billing/internal/usecase"
)

// Hand-rolled mocks with per-method hooks; only the hooks a test sets are
// exercised.

type mockPlanUC struct {
	CreateFn     func(ctx context.Context, p *model.Plan) (*model.Plan, error)
	UpdateFn     func(ctx context.Context, p *model.Plan) (*model.Plan, error)
	DeleteFn     func(ctx context.Context, id string) error
	GetByIDFn    func(ctx context.Context, id string) (*model.Plan, error)
	ListPublicFn func(ctx context.Context) ([]*model.Plan, error)
	ListAllFn    func(ctx context.Context) ([]*model.Plan, error)
}

var _ usecase.PlanUseCase = (*mockPlanUC)(nil)

func (m *mockPlanUC) Create(ctx context.Context, p *model.Plan) (*model.Plan, error) {
	return m.CreateFn(ctx, p)
}
func (m *mockPlanUC) Update(ctx context.Context, p *model.Plan) (*model.Plan, error) {
	return m.UpdateFn(ctx, p)
}
func (m *mockPlanUC) Delete(ctx context.Context, id string) error { return m.DeleteFn(ctx, id) }
func (m *mockPlanUC) GetByID(ctx context.Context, id string) (*model.Plan, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockPlanUC) GetByIDForUpdate(ctx context.Context, _ repository.Tx, id string) (*model.Plan, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockPlanUC) ListPublic(ctx context.Context) ([]*model.Plan, error) {
	return m.ListPublicFn(ctx)
}
func (m *mockPlanUC) ListAll(ctx context.Context) ([]*model.Plan, error) { return m.ListAllFn(ctx) }

type mockPaymentUC struct {
	CreateFn  func(ctx context.Context, in usecase.CreatePaymentInput) (*model.Payment, error)
	ProcessFn func(ctx context.Context, id string) (*usecase.ProcessResult, error)
	ApproveFn func(ctx context.Context, id string, in usecase.ApproveInput) (*model.Payment, error)
	RefundFn  func(ctx context.Context, id, reason, by string) (*model.Payment, error)
	GetByIDFn func(ctx context.Context, id string) (*model.Payment, error)
}

var _ usecase.PaymentUseCase = (*mockPaymentUC)(nil)

func (m *mockPaymentUC) Create(ctx context.Context, in usecase.CreatePaymentInput) (*model.Payment, error) {
	return m.CreateFn(ctx, in)
}
func (m *mockPaymentUC) Process(ctx context.Context, id string) (*usecase.ProcessResult, error) {
	return m.ProcessFn(ctx, id)
}
func (m *mockPaymentUC) Approve(ctx context.Context, id string, in usecase.ApproveInput) (*model.Payment, error) {
	return m.ApproveFn(ctx, id, in)
}
func (m *mockPaymentUC) Reject(ctx context.Context, id, reason string) (*model.Payment, error) {
	return nil, domain.ErrNotFound
}
func (m *mockPaymentUC) Refund(ctx context.Context, id, reason, by string) (*model.Payment, error) {
	return m.RefundFn(ctx, id, reason, by)
}
func (m *mockPaymentUC) Cancel(ctx context.Context, id, reason string) (*model.Payment, error) {
	return nil, domain.ErrNotFound
}
func (m *mockPaymentUC) Retry(ctx context.Context, id string) (*model.Payment, error) {
	return nil, domain.ErrNotFound
}
func (m *mockPaymentUC) Chargeback(ctx context.Context, id, reason string) (*model.Payment, error) {
	return nil, domain.ErrNotFound
}
func (m *mockPaymentUC) ResolveChargeback(ctx context.Context, id string) (*model.Payment, error) {
	return nil, domain.ErrNotFound
}
func (m *mockPaymentUC) ExpireStaleInstantTransfers(ctx context.Context, limit int) (int, error) {
	return 0, nil
}
func (m *mockPaymentUC) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockPaymentUC) FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error) {
	return nil, domain.ErrNotFound
}
func (m *mockPaymentUC) ListByUser(ctx context.Context, userID string) ([]*model.Payment, error) {
	return nil, nil
}
func (m *mockPaymentUC) List(ctx context.Context, filter repository.PaymentFilter) ([]*model.Payment, error) {
	return nil, nil
}

type mockWebhookUC struct {
	AcceptFn func(ctx context.Context, ev model.WebhookEvent) (string, error)
}

var _ usecase.WebhookUseCase = (*mockWebhookUC)(nil)

func (m *mockWebhookUC) Accept(ctx context.Context, ev model.WebhookEvent) (string, error) {
	return m.AcceptFn(ctx, ev)
}
func (m *mockWebhookUC) Process(ctx context.Context, ev model.WebhookEvent) error { return nil }

type mockUserPlanUC struct {
	CancelFn     func(ctx context.Context, tx repository.Tx, id, reason string) (*model.UserPlan, error)
	GetByIDFn    func(ctx context.Context, id string) (*model.UserPlan, error)
	FindByUserFn func(ctx context.Context, userID string) ([]*model.UserPlan, error)
}

var _ usecase.UserPlanUseCase = (*mockUserPlanUC)(nil)

func (m *mockUserPlanUC) Create(ctx context.Context, tx repository.Tx, userID string, plan *model.Plan, pm model.PaymentMethod, autoRenew bool, trialEndsAt *time.Time) (*model.UserPlan, error) {
	return nil, nil
}
func (m *mockUserPlanUC) Activate(ctx context.Context, tx repository.Tx, id, lastPaymentID string) (*model.UserPlan, error) {
	return nil, nil
}
func (m *mockUserPlanUC) Cancel(ctx context.Context, tx repository.Tx, id, reason string) (*model.UserPlan, error) {
	return m.CancelFn(ctx, tx, id, reason)
}
func (m *mockUserPlanUC) Suspend(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	return nil, nil
}
func (m *mockUserPlanUC) Resume(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	return nil, nil
}
func (m *mockUserPlanUC) Renew(ctx context.Context, tx repository.Tx, id string, plan *model.Plan, lastPaymentID string) (*model.UserPlan, error) {
	return nil, nil
}
func (m *mockUserPlanUC) Expire(ctx context.Context, id string) (*model.UserPlan, error) {
	return nil, nil
}
func (m *mockUserPlanUC) ExpireDue(ctx context.Context, now time.Time) (repository.SweepResult, error) {
	return repository.SweepResult{}, nil
}
func (m *mockUserPlanUC) UpdateMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	return nil
}
func (m *mockUserPlanUC) GetByID(ctx context.Context, id string) (*model.UserPlan, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockUserPlanUC) GetForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.UserPlan, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockUserPlanUC) FindByUser(ctx context.Context, userID string) ([]*model.UserPlan, error) {
	return m.FindByUserFn(ctx, userID)
}
func (m *mockUserPlanUC) UserHasActivePlan(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

type mockCouponUC struct {
	CreateFn   func(ctx context.Context, c *model.Coupon) (*model.Coupon, error)
	ValidateFn func(ctx context.Context, tx repository.Tx, code, planID string, amount int64) (*model.Coupon, int64, error)
}

var _ usecase.CouponUseCase = (*mockCouponUC)(nil)

func (m *mockCouponUC) Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	return m.CreateFn(ctx, c)
}
func (m *mockCouponUC) Validate(ctx context.Context, tx repository.Tx, code, planID string, amount int64) (*model.Coupon, int64, error) {
	return m.ValidateFn(ctx, tx, code, planID, amount)
}
func (m *mockCouponUC) Redeem(ctx context.Context, tx repository.Tx, couponID string) error {
	return nil
}
func (m *mockCouponUC) ListActive(ctx context.Context) ([]*model.Coupon, error) { return nil, nil }

type mockNotificationLog struct{}

var _ repository.NotificationLogRepository = (*mockNotificationLog)(nil)

func (m *mockNotificationLog) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	return nil
}
func (m *mockNotificationLog) FindByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	return nil, nil
}
