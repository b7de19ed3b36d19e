// Package models defines subscription, quota, and lead records.
package models

import "time"

type PlanType string

const (
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UnlimitedLeads is the sentinel quota for plans with no lead ceiling.
const UnlimitedLeads = -1

// Subscription is the entitlement record governing what a user may do.
// At most one active row exists per user; the webhook reconciler is the
// only writer that creates or replaces it.
type Subscription struct {
	UserID             string    `db:"user_id"`
	PlanType           PlanType  `db:"plan_type"`
	LeadsPerMonth      int       `db:"leads_per_month"`
	CurrentMonthLeads  int       `db:"current_month_leads"`
	MaxStoragePackages int       `db:"max_storage_packages"`
	UsedStoragePackage int       `db:"used_storage_packages"`
	Status             string    `db:"status"`
	StripeCustomerID   string    `db:"stripe_customer_id"`
	StripeSessionID    string    `db:"stripe_session_id"`
	CurrentPeriodStart time.Time `db:"current_period_start"`
	CurrentPeriodEnd   time.Time `db:"current_period_end"`
}

// PlanConfig describes the quota bundle a checkout grants. The same table
// backs the payment session initiator and the webhook reconciler so the
// two can never disagree on what a plan is worth.
type PlanConfig struct {
	Name          string
	Description   string
	PriceCents    int64
	LeadsPerMonth int
	MaxStorage    int
}

var PlanConfigs = map[PlanType]PlanConfig{
	PlanBasic: {
		Name:          "1000 Credits Pack",
		Description:   "Generate up to 1000 leads (1 credit = 1 lead), includes 15 storage packages",
		PriceCents:    4900,
		LeadsPerMonth: 500,
		MaxStorage:    15,
	},
	PlanPremium: {
		Name:          "3000 Credits Pack",
		Description:   "Generate up to 3000 leads (1 credit = 1 lead), includes 30 storage packages",
		PriceCents:    6900,
		LeadsPerMonth: UnlimitedLeads,
		MaxStorage:    30,
	},
}

// ValidPlan reports whether p names a purchasable plan.
func ValidPlan(p PlanType) bool {
	_, ok := PlanConfigs[p]
	return ok
}

// Storage add-on: one-time payment that raises the package ceiling.
const (
	StorageUpgradePriceCents  = 1499
	StorageUpgradeName        = "Additional Storage"
	StorageUpgradeDescription = "200 additional lead package slots, valid for 12 months"
	StorageUpgradeIncrement   = 200
)

// GrantValidityMonths is the entitlement window applied on every grant.
const GrantValidityMonths = 12
