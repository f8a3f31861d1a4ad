package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"subscription-billing/internal/config"
	"subscription-billing/internal/domain/model"
	pg "subscription-billing/internal/infra/db/postgres"
	"subscription-billing/internal/usecase"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS plans (
  id               TEXT PRIMARY KEY,
  name             TEXT NOT NULL,
  description      TEXT NOT NULL DEFAULT '',
  price            BIGINT NOT NULL,
  currency         TEXT NOT NULL,
  duration_days    INT NOT NULL,
  billing_interval TEXT NOT NULL,
  is_active        BOOLEAN NOT NULL DEFAULT TRUE,
  is_public        BOOLEAN NOT NULL DEFAULT TRUE,
  features         TEXT[] NOT NULL DEFAULT '{}',
  limits           JSONB,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS user_plans (
  id                  TEXT PRIMARY KEY,
  user_id             TEXT NOT NULL,
  plan_id             TEXT NOT NULL REFERENCES plans(id),
  status              TEXT NOT NULL,
  start_date          TIMESTAMPTZ NOT NULL,
  end_date            TIMESTAMPTZ NOT NULL,
  trial_ends_at       TIMESTAMPTZ,
  auto_renew          BOOLEAN NOT NULL DEFAULT FALSE,
  last_payment_id     TEXT,
  payment_method      TEXT NOT NULL,
  cancelled_at        TIMESTAMPTZ,
  cancellation_reason TEXT,
  metadata            JSONB,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_user_plans_user ON user_plans (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_plans_due ON user_plans (end_date) WHERE status IN ('active','trial')`,
	`CREATE TABLE IF NOT EXISTS payments (
  id                    TEXT PRIMARY KEY,
  user_id               TEXT NOT NULL,
  plan_id               TEXT NOT NULL REFERENCES plans(id),
  user_plan_id          TEXT REFERENCES user_plans(id),
  coupon_id             TEXT,
  original_amount       BIGINT NOT NULL,
  discount_amount       BIGINT NOT NULL DEFAULT 0,
  amount                BIGINT NOT NULL,
  currency              TEXT NOT NULL,
  payment_method        TEXT NOT NULL,
  status                TEXT NOT NULL,
  external_id           TEXT,
  external_reference    TEXT,
  receipt_url           TEXT,
  transaction_data      JSONB,
  metadata              JSONB,
  failure_reason        TEXT,
  refund_reason         TEXT,
  cancellation_reason   TEXT,
  chargeback_reason     TEXT,
  refunded_by           TEXT,
  refund_transaction_id TEXT,
  processed_at          TIMESTAMPTZ,
  paid_at               TIMESTAMPTZ,
  refunded_at           TIMESTAMPTZ,
  cancelled_at          TIMESTAMPTZ,
  chargeback_at         TIMESTAMPTZ,
  created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_user ON payments (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_external ON payments (external_id)`,
	`CREATE TABLE IF NOT EXISTS coupons (
  id                  TEXT PRIMARY KEY,
  code                TEXT NOT NULL UNIQUE,
  discount_type       TEXT NOT NULL,
  discount_value      BIGINT NOT NULL,
  expiration_date     TIMESTAMPTZ,
  max_uses            INT,
  times_used          INT NOT NULL DEFAULT 0,
  is_active           BOOLEAN NOT NULL DEFAULT TRUE,
  applicable_plan_ids TEXT[] NOT NULL DEFAULT '{}',
  created_by          TEXT NOT NULL DEFAULT '',
  created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS instant_transfers (
  id              TEXT PRIMARY KEY,
  payment_id      TEXT NOT NULL REFERENCES payments(id),
  txid            TEXT NOT NULL UNIQUE,
  pay_code        TEXT NOT NULL,
  pay_code_url    TEXT NOT NULL DEFAULT '',
  expiration_date TIMESTAMPTZ NOT NULL,
  status          TEXT NOT NULL,
  end_to_end_id   TEXT,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_instant_transfers_sweep ON instant_transfers (expiration_date) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS card_transactions (
  id                     TEXT PRIMARY KEY,
  payment_id             TEXT NOT NULL REFERENCES payments(id),
  gateway_transaction_id TEXT,
  authorization_code     TEXT,
  card_brand             TEXT NOT NULL DEFAULT '',
  card_last_four         TEXT NOT NULL DEFAULT '',
  installments           INT NOT NULL DEFAULT 1,
  error_code             TEXT,
  error_message          TEXT,
  status                 TEXT NOT NULL,
  created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS notifications (
  id         TEXT PRIMARY KEY,
  user_id    TEXT NOT NULL,
  payment_id TEXT,
  kind       TEXT NOT NULL,
  title      TEXT NOT NULL,
  message    TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id)`,
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("schema: %v", err)
		}
	}
	fmt.Println("schema ready")

	planUC := usecase.NewPlanUseCase(pg.NewPlanRepo(pool))

	plans, err := planUC.ListAll(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (days=%d, price=%d %s)\n", p.Name, p.DurationDays, p.Price, p.Currency)
		}
		return
	}

	five := 5
	seed := []*model.Plan{
		{
			Name: "Starter", Description: "For trying things out",
			Price: 0, Currency: cfg.Payment.DefaultCurrency, DurationDays: 7,
			Interval: model.PlanIntervalMonthly, IsActive: true, IsPublic: true,
			Features: []string{"community support"},
			Limits: model.PlanLimits{
				MaxProjects: &five,
				Support:     model.SupportTierBasic,
			},
		},
		{
			Name: "Pro", Description: "For small teams",
			Price: 9900, Currency: cfg.Payment.DefaultCurrency, DurationDays: 30,
			Interval: model.PlanIntervalMonthly, IsActive: true, IsPublic: true,
			Features: []string{"priority support", "api access"},
			Limits: model.PlanLimits{
				APIAccess: true,
				Support:   model.SupportTierPriority,
			},
		},
		{
			Name: "Business", Description: "Annual plan for growing teams",
			Price: 99900, Currency: cfg.Payment.DefaultCurrency, DurationDays: 365,
			Interval: model.PlanIntervalYearly, IsActive: true, IsPublic: true,
			Features: []string{"premium support", "api access", "custom branding"},
			Limits: model.PlanLimits{
				APIAccess:      true,
				CustomBranding: true,
				Support:        model.SupportTierPremium,
			},
		},
	}

	for _, p := range seed {
		created, err := planUC.Create(ctx, p)
		if err != nil {
			log.Fatalf("create plan %q: %v", p.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, days=%d, price=%d %s)\n",
			created.Name, created.ID, created.DurationDays, created.Price, created.Currency)
	}

	couponUC := usecase.NewCouponUseCase(pg.NewCouponRepo(pool))
	hundred := 100
	welcome := &model.Coupon{
		Code:          "WELCOME10",
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: 10,
		MaxUses:       &hundred,
		CreatedBy:     "seed",
	}
	if _, err := couponUC.Create(ctx, welcome); err != nil {
		log.Fatalf("create coupon: %v", err)
	}
	fmt.Printf("seeded coupon: %s\n", welcome.Code)

	fmt.Println("Seeding complete.")
}
