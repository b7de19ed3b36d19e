// Package app derives per-user permissions from the entitlement record.
package app

import (
	"context"

	"github.com/HimangshuPronoy/LeadGen/app/models"
)

// EntitlementGuard reads a user's entitlement record, derives the
// generate/save permissions, and pushes consumption back through the
// store's atomic increments. The cached record is only a snapshot;
// Refresh after any payment redirect or consumption before trusting
// the derived booleans again.
type EntitlementGuard struct {
	subs   SubscriptionStore
	userID string
	sub    *models.Subscription
}

func NewEntitlementGuard(subs SubscriptionStore, userID string) *EntitlementGuard {
	return &EntitlementGuard{subs: subs, userID: userID}
}

// Refresh re-reads the active record. A user who has never paid ends up
// with no record and no permissions.
func (g *EntitlementGuard) Refresh(ctx context.Context) error {
	sub, err := g.subs.GetActive(ctx, g.userID)
	if err != nil {
		return err
	}
	g.sub = sub
	return nil
}

// Subscription returns the cached record, nil when the user has none.
func (g *EntitlementGuard) Subscription() *models.Subscription {
	return g.sub
}

// CanGenerateLeads reports whether the user may generate any leads at all.
func (g *EntitlementGuard) CanGenerateLeads() bool {
	if g.sub == nil || g.sub.Status != models.StatusActive {
		return false
	}
	if g.sub.LeadsPerMonth == models.UnlimitedLeads {
		return true
	}
	return g.sub.CurrentMonthLeads < g.sub.LeadsPerMonth
}

// CanSavePackage reports whether another package fits under the ceiling.
func (g *EntitlementGuard) CanSavePackage() bool {
	if g.sub == nil || g.sub.Status != models.StatusActive {
		return false
	}
	return g.sub.UsedStoragePackage < g.sub.MaxStoragePackages
}

// RemainingLeads returns how many credits are left, or UnlimitedLeads for
// plans without a ceiling.
func (g *EntitlementGuard) RemainingLeads() int {
	if g.sub == nil {
		return 0
	}
	if g.sub.LeadsPerMonth == models.UnlimitedLeads {
		return models.UnlimitedLeads
	}
	remaining := g.sub.LeadsPerMonth - g.sub.CurrentMonthLeads
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ConsumeLeads records n consumed credits after a successful generation
// and bumps the cached copy so later checks in the same request see it.
func (g *EntitlementGuard) ConsumeLeads(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	if err := g.subs.IncrementLeads(ctx, g.userID, n); err != nil {
		return err
	}
	if g.sub != nil {
		g.sub.CurrentMonthLeads += n
	}
	return nil
}

// ConsumePackage records one saved package against the storage ceiling.
func (g *EntitlementGuard) ConsumePackage(ctx context.Context) error {
	if err := g.subs.IncrementStorageUsed(ctx, g.userID, 1); err != nil {
		return err
	}
	if g.sub != nil {
		g.sub.UsedStoragePackage++
	}
	return nil
}

// ReleasePackage gives a storage slot back after a package delete.
func (g *EntitlementGuard) ReleasePackage(ctx context.Context) error {
	if err := g.subs.IncrementStorageUsed(ctx, g.userID, -1); err != nil {
		return err
	}
	if g.sub != nil && g.sub.UsedStoragePackage > 0 {
		g.sub.UsedStoragePackage--
	}
	return nil
}
