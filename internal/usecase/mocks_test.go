//go:build !integration

package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/model"
	"subscription-billing/internal/domain/ports/adapter"
	"subscription-billing/internal/domain/ports/repository"
)

// In-memory repositories for unit tests: mutex + map, copies on return,
// optional fn hooks to inject failures.

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// --- payments ---

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*model.Payment

	SaveFn           func(p *model.Payment) error
	UpdateStatusIfFn func(id string, expected []model.PaymentStatus, patch model.PaymentPatch) (bool, error)
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: map[string]*model.Payment{}}
}

func copyPayment(p *model.Payment) *model.Payment {
	cp := *p
	return &cp
}

func (m *mockPaymentRepo) Save(_ context.Context, _ repository.Tx, p *model.Payment) error {
	if m.SaveFn != nil {
		if err := m.SaveFn(p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = copyPayment(p)
	return nil
}

func (m *mockPaymentRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyPayment(p), nil
}

func (m *mockPaymentRepo) FindByExternalID(_ context.Context, _ repository.Tx, externalID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ExternalID != nil && *p.ExternalID == externalID {
			return copyPayment(p), nil
		}
		if p.ExternalReference != nil && *p.ExternalReference == externalID {
			return copyPayment(p), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPaymentRepo) FindByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			out = append(out, copyPayment(p))
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) FindByUserPlan(_ context.Context, _ repository.Tx, userPlanID string) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.payments {
		if p.UserPlanID != nil && *p.UserPlanID == userPlanID {
			out = append(out, copyPayment(p))
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) List(_ context.Context, _ repository.Tx, filter repository.PaymentFilter) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.payments {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Method != "" && p.PaymentMethod != filter.Method {
			continue
		}
		out = append(out, copyPayment(p))
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) UpdateStatusIf(_ context.Context, _ repository.Tx, id string, expected []model.PaymentStatus, patch model.PaymentPatch) (bool, error) {
	if m.UpdateStatusIfFn != nil {
		return m.UpdateStatusIfFn(id, expected, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return false, nil
	}
	match := false
	for _, s := range expected {
		if p.Status == s {
			match = true
			break
		}
	}
	if !match {
		return false, nil
	}
	p.Status = patch.Status
	if patch.ExternalID != nil {
		p.ExternalID = patch.ExternalID
	}
	if patch.ExternalReference != nil {
		p.ExternalReference = patch.ExternalReference
	}
	if patch.ReceiptURL != nil {
		p.ReceiptURL = patch.ReceiptURL
	}
	if patch.FailureReason != nil {
		p.FailureReason = patch.FailureReason
	}
	if patch.RefundReason != nil {
		p.RefundReason = patch.RefundReason
	}
	if patch.CancellationReason != nil {
		p.CancellationReason = patch.CancellationReason
	}
	if patch.ChargebackReason != nil {
		p.ChargebackReason = patch.ChargebackReason
	}
	if patch.RefundedBy != nil {
		p.RefundedBy = patch.RefundedBy
	}
	if patch.RefundTransactionID != nil {
		p.RefundTransactionID = patch.RefundTransactionID
	}
	if patch.TransactionData != nil {
		if p.TransactionData == nil {
			p.TransactionData = map[string]interface{}{}
		}
		for k, v := range patch.TransactionData {
			p.TransactionData[k] = v
		}
	}
	if patch.ProcessedAt != nil {
		p.ProcessedAt = patch.ProcessedAt
	}
	if patch.PaidAt != nil {
		p.PaidAt = patch.PaidAt
	}
	if patch.RefundedAt != nil {
		p.RefundedAt = patch.RefundedAt
	}
	if patch.CancelledAt != nil {
		p.CancelledAt = patch.CancelledAt
	}
	if patch.ChargebackAt != nil {
		p.ChargebackAt = patch.ChargebackAt
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

// --- instant transfers ---

type mockInstantTransferRepo struct {
	mu        sync.Mutex
	transfers map[string]*model.InstantTransfer
}

func newMockInstantTransferRepo() *mockInstantTransferRepo {
	return &mockInstantTransferRepo{transfers: map[string]*model.InstantTransfer{}}
}

func (m *mockInstantTransferRepo) Save(_ context.Context, _ repository.Tx, it *model.InstantTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *it
	m.transfers[it.ID] = &cp
	return nil
}

func (m *mockInstantTransferRepo) FindByPaymentID(_ context.Context, _ repository.Tx, paymentID string) (*model.InstantTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.transfers {
		if it.PaymentID == paymentID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInstantTransferRepo) FindByTxID(_ context.Context, _ repository.Tx, txid string) (*model.InstantTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.transfers {
		if it.TxID == txid {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInstantTransferRepo) ListExpiredActive(_ context.Context, _ repository.Tx, limit int) ([]*model.InstantTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*model.InstantTransfer
	for _, it := range m.transfers {
		if it.Status == model.InstantTransferStatusActive && it.ExpirationDate.Before(now) {
			cp := *it
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *mockInstantTransferRepo) UpdateStatusIf(_ context.Context, _ repository.Tx, id string, expected []model.InstantTransferStatus, status model.InstantTransferStatus, endToEndID *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.transfers[id]
	if !ok {
		return false, nil
	}
	for _, s := range expected {
		if it.Status == s {
			it.Status = status
			if endToEndID != nil {
				it.EndToEndID = endToEndID
			}
			it.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

// --- card transactions ---

type mockCardTransactionRepo struct {
	mu    sync.Mutex
	cards map[string]*model.CardTransaction
}

func newMockCardTransactionRepo() *mockCardTransactionRepo {
	return &mockCardTransactionRepo{cards: map[string]*model.CardTransaction{}}
}

func (m *mockCardTransactionRepo) Save(_ context.Context, _ repository.Tx, ct *model.CardTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ct
	m.cards[ct.ID] = &cp
	return nil
}

func (m *mockCardTransactionRepo) FindByPaymentID(_ context.Context, _ repository.Tx, paymentID string) (*model.CardTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ct := range m.cards {
		if ct.PaymentID == paymentID {
			cp := *ct
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCardTransactionRepo) UpdateStatusIf(_ context.Context, _ repository.Tx, id string, expected []model.CardTransactionStatus, status model.CardTransactionStatus, authorizationCode *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct, ok := m.cards[id]
	if !ok {
		return false, nil
	}
	for _, s := range expected {
		if ct.Status == s {
			ct.Status = status
			if authorizationCode != nil {
				ct.AuthorizationCode = authorizationCode
			}
			ct.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

// --- plans ---

type mockPlanRepo struct {
	mu    sync.Mutex
	plans map[string]*model.Plan
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: map[string]*model.Plan{}}
}

func (m *mockPlanRepo) Save(_ context.Context, _ repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockPlanRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlanRepo) ListPublic(_ context.Context, _ repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Plan
	for _, p := range m.plans {
		if p.IsPublic && p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Plan
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPlanRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = false
	return nil
}

// --- coupons ---

type mockCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*model.Coupon
}

func newMockCouponRepo() *mockCouponRepo {
	return &mockCouponRepo{coupons: map[string]*model.Coupon{}}
}

func (m *mockCouponRepo) Save(_ context.Context, _ repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.coupons[c.ID] = &cp
	return nil
}

func (m *mockCouponRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ repository.Tx, code string) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCouponRepo) ListActive(_ context.Context, _ repository.Tx) ([]*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Coupon
	for _, c := range m.coupons {
		if c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockCouponRepo) IncrementUsage(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !c.IsActive {
		return domain.ErrCouponInactive
	}
	if c.MaxUses != nil && c.TimesUsed >= *c.MaxUses {
		return domain.ErrCouponUsageCap
	}
	c.TimesUsed++
	if c.MaxUses != nil && c.TimesUsed >= *c.MaxUses {
		c.IsActive = false
	}
	return nil
}

// --- user plans ---

type mockUserPlanRepo struct {
	mu        sync.Mutex
	userPlans map[string]*model.UserPlan
}

func newMockUserPlanRepo() *mockUserPlanRepo {
	return &mockUserPlanRepo{userPlans: map[string]*model.UserPlan{}}
}

func (m *mockUserPlanRepo) Save(_ context.Context, _ repository.Tx, up *model.UserPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *up
	m.userPlans[up.ID] = &cp
	return nil
}

func (m *mockUserPlanRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.UserPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.userPlans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *up
	return &cp, nil
}

func (m *mockUserPlanRepo) FindByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.UserPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UserPlan
	for _, up := range m.userPlans {
		if up.UserID == userID {
			cp := *up
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockUserPlanRepo) FindActiveByUserAndPlan(_ context.Context, _ repository.Tx, userID, planID string) (*model.UserPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, up := range m.userPlans {
		if up.UserID == userID && up.PlanID == planID && up.Status.Entitled() {
			cp := *up
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserPlanRepo) UserHasActivePlan(_ context.Context, _ repository.Tx, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, up := range m.userPlans {
		if up.UserID == userID && up.Status.Entitled() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserPlanRepo) UpdateStatusIf(_ context.Context, _ repository.Tx, id string, expected []model.UserPlanStatus, patch model.UserPlanPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.userPlans[id]
	if !ok {
		return false, nil
	}
	match := false
	for _, s := range expected {
		if up.Status == s {
			match = true
			break
		}
	}
	if !match {
		return false, nil
	}
	up.Status = patch.Status
	if patch.EndDate != nil {
		up.EndDate = *patch.EndDate
	}
	if patch.AutoRenew != nil {
		up.AutoRenew = *patch.AutoRenew
	}
	if patch.LastPaymentID != nil {
		up.LastPaymentID = patch.LastPaymentID
	}
	if patch.ClearCancellation {
		up.CancelledAt = nil
		up.CancellationReason = nil
	}
	if patch.CancelledAt != nil {
		up.CancelledAt = patch.CancelledAt
	}
	if patch.CancellationReason != nil {
		up.CancellationReason = patch.CancellationReason
	}
	if patch.Metadata != nil {
		if up.Metadata == nil {
			up.Metadata = map[string]interface{}{}
		}
		for k, v := range patch.Metadata {
			up.Metadata[k] = v
		}
	}
	up.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockUserPlanRepo) Renew(_ context.Context, _ repository.Tx, id string, newEndDate time.Time, lastPaymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.userPlans[id]
	if !ok {
		return domain.ErrNotFound
	}
	up.Status = model.UserPlanStatusActive
	up.EndDate = newEndDate
	up.LastPaymentID = &lastPaymentID
	up.UpdatedAt = time.Now()
	return nil
}

func (m *mockUserPlanRepo) MergeMetadata(_ context.Context, _ repository.Tx, id string, metadata map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.userPlans[id]
	if !ok {
		return domain.ErrNotFound
	}
	if up.Metadata == nil {
		up.Metadata = map[string]interface{}{}
	}
	for k, v := range metadata {
		up.Metadata[k] = v
	}
	return nil
}

func (m *mockUserPlanRepo) ExpireDue(_ context.Context, _ repository.Tx, now time.Time) (repository.SweepResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res repository.SweepResult
	for _, up := range m.userPlans {
		if !up.Status.Entitled() || !up.EndDate.Before(now) {
			continue
		}
		res.ProcessedCount++
		if up.AutoRenew {
			continue
		}
		up.Status = model.UserPlanStatusExpired
		up.UpdatedAt = time.Now()
		res.ExpiredCount++
	}
	return res, nil
}

// --- adapters ---

type mockGateway struct {
	mu    sync.Mutex
	calls int

	CreatePayCodeFn func(paymentID string, amount int64) (*adapter.PayCode, error)
}

func (m *mockGateway) Name() string { return "testgw" }

func (m *mockGateway) CreatePayCode(_ context.Context, paymentID string, amount int64, _ string, expiresIn time.Duration) (*adapter.PayCode, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.CreatePayCodeFn != nil {
		return m.CreatePayCodeFn(paymentID, amount)
	}
	return &adapter.PayCode{
		TxID:           "tx-" + paymentID,
		Code:           "paycode-" + paymentID,
		CodeURL:        "https://gw.test/pay/" + paymentID,
		ExpirationDate: time.Now().Add(expiresIn),
	}, nil
}

type notifyCall struct {
	UserID string
	Kind   model.NotificationKind
}

type mockNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	Err   error
}

func (m *mockNotifier) Notify(_ context.Context, userID string, _ *string, kind model.NotificationKind, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.calls = append(m.calls, notifyCall{UserID: userID, Kind: kind})
	return nil
}

func (m *mockNotifier) count(kind model.NotificationKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

type mockDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	Err  error
}

func newMockDeduper() *mockDeduper {
	return &mockDeduper{seen: map[string]bool{}}
}

func (m *mockDeduper) MarkOnce(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}
