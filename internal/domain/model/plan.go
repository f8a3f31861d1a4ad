package model

import (
	"fmt"
	"time"

	"subscription-billing/internal/domain"
)

type PlanInterval string

const (
	PlanIntervalMonthly PlanInterval = "monthly"
	PlanIntervalYearly  PlanInterval = "yearly"
)

type SupportTier string

const (
	SupportTierBasic    SupportTier = "basic"
	SupportTierPriority SupportTier = "priority"
	SupportTierPremium  SupportTier = "premium"
)

// PlanLimits holds the quotas a plan grants. Nil numeric limits mean
// unlimited.
type PlanLimits struct {
	MaxProjects        *int        `json:"max_projects,omitempty"`
	MaxMembersPerOrg   *int        `json:"max_members_per_org,omitempty"`
	MaxStorageMB       *int        `json:"max_storage_mb,omitempty"`
	MaxMonthlyRequests *int        `json:"max_monthly_requests,omitempty"`
	APIAccess          bool        `json:"api_access"`
	CustomBranding     bool        `json:"custom_branding"`
	Support            SupportTier `json:"support"`
}

// Plan is the catalog entry. Price is in cents of Currency. Plans are only
// soft-deactivated so historic payments keep a valid reference.
type Plan struct {
	ID           string
	Name         string
	Description  string
	Price        int64
	Currency     string
	DurationDays int
	Interval     PlanInterval
	IsActive     bool
	IsPublic     bool
	Features     []string
	Limits       PlanLimits
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Plan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: plan name is required", domain.ErrValidation)
	}
	if p.Price < 0 || p.Price > MaxAmount {
		return fmt.Errorf("%w: plan price out of range", domain.ErrValidation)
	}
	if !ValidCurrencies[p.Currency] {
		return fmt.Errorf("%w: unsupported currency %q", domain.ErrValidation, p.Currency)
	}
	if p.DurationDays <= 0 {
		return fmt.Errorf("%w: duration must be positive", domain.ErrValidation)
	}
	if p.Interval != PlanIntervalMonthly && p.Interval != PlanIntervalYearly {
		return fmt.Errorf("%w: unknown interval %q", domain.ErrValidation, p.Interval)
	}
	return nil
}

// IsFree reports whether the plan costs nothing; free plans skip the gateway
// and auto-approve.
func (p *Plan) IsFree() bool { return p.Price == 0 }
