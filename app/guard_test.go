package app

import (
	"context"
	"sync"
	"testing"

	"github.com/HimangshuPronoy/LeadGen/app/models"
)

func activeSub(userID string, plan models.PlanType) models.Subscription {
	cfg := models.PlanConfigs[plan]
	return models.Subscription{
		UserID:             userID,
		PlanType:           plan,
		LeadsPerMonth:      cfg.LeadsPerMonth,
		MaxStoragePackages: cfg.MaxStorage,
		Status:             models.StatusActive,
	}
}

func TestGuardNoSubscription(t *testing.T) {
	store := newMemorySubscriptionStore()
	guard := NewEntitlementGuard(store, "u-none")

	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	if guard.CanGenerateLeads() {
		t.Fatalf("expected CanGenerateLeads=false without a subscription")
	}
	if guard.CanSavePackage() {
		t.Fatalf("expected CanSavePackage=false without a subscription")
	}
	if got := guard.RemainingLeads(); got != 0 {
		t.Fatalf("RemainingLeads = %d, want 0", got)
	}
}

func TestGuardInactiveSubscription(t *testing.T) {
	store := newMemorySubscriptionStore()
	sub := activeSub("u1", models.PlanBasic)
	sub.Status = models.StatusInactive
	store.put(sub)

	guard := NewEntitlementGuard(store, "u1")
	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	if guard.CanGenerateLeads() || guard.CanSavePackage() {
		t.Fatalf("inactive subscription must grant nothing")
	}
}

func TestGuardUnlimitedPlan(t *testing.T) {
	store := newMemorySubscriptionStore()
	sub := activeSub("u1", models.PlanPremium)
	sub.CurrentMonthLeads = 1_000_000
	store.put(sub)

	guard := NewEntitlementGuard(store, "u1")
	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	if !guard.CanGenerateLeads() {
		t.Fatalf("unlimited plan must always allow generation")
	}
	if got := guard.RemainingLeads(); got != models.UnlimitedLeads {
		t.Fatalf("RemainingLeads = %d, want unlimited sentinel", got)
	}
}

func TestGuardQuotaExhaustion(t *testing.T) {
	store := newMemorySubscriptionStore()
	sub := activeSub("u1", models.PlanBasic)
	sub.CurrentMonthLeads = sub.LeadsPerMonth
	store.put(sub)

	guard := NewEntitlementGuard(store, "u1")
	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	if guard.CanGenerateLeads() {
		t.Fatalf("exhausted quota must block generation")
	}
	if got := guard.RemainingLeads(); got != 0 {
		t.Fatalf("RemainingLeads = %d, want 0", got)
	}
}

func TestGuardStorageCeiling(t *testing.T) {
	store := newMemorySubscriptionStore()
	sub := activeSub("u1", models.PlanBasic)
	sub.UsedStoragePackage = sub.MaxStoragePackages
	store.put(sub)

	guard := NewEntitlementGuard(store, "u1")
	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	if guard.CanSavePackage() {
		t.Fatalf("full storage must block package saves")
	}
}

func TestGuardConsumeLeadsUpdatesCache(t *testing.T) {
	store := newMemorySubscriptionStore()
	store.put(activeSub("u1", models.PlanBasic))

	guard := NewEntitlementGuard(store, "u1")
	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}

	if err := guard.ConsumeLeads(context.Background(), 8); err != nil {
		t.Fatalf("ConsumeLeads error = %v", err)
	}
	if got := guard.Subscription().CurrentMonthLeads; got != 8 {
		t.Fatalf("cached CurrentMonthLeads = %d, want 8", got)
	}
	if got := store.get("u1").CurrentMonthLeads; got != 8 {
		t.Fatalf("stored CurrentMonthLeads = %d, want 8", got)
	}
	if got := guard.RemainingLeads(); got != 492 {
		t.Fatalf("RemainingLeads = %d, want 492", got)
	}
}

func TestGuardConsumeLeadsOverQuota(t *testing.T) {
	store := newMemorySubscriptionStore()
	sub := activeSub("u1", models.PlanBasic)
	sub.CurrentMonthLeads = 499
	store.put(sub)

	guard := NewEntitlementGuard(store, "u1")
	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}
	if err := guard.ConsumeLeads(context.Background(), 5); err != ErrLeadQuotaExceeded {
		t.Fatalf("ConsumeLeads over quota error = %v, want ErrLeadQuotaExceeded", err)
	}
	if got := store.get("u1").CurrentMonthLeads; got != 499 {
		t.Fatalf("stored CurrentMonthLeads = %d, want unchanged 499", got)
	}
}

// Concurrent consumers must never lose an update: the final counter is the
// sum of every successful increment.
func TestConcurrentLeadIncrements(t *testing.T) {
	store := newMemorySubscriptionStore()
	store.put(activeSub("u1", models.PlanBasic))

	const workers = 10
	const perWorker = 5

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := store.IncrementLeads(context.Background(), "u1", 1); err != nil {
					t.Errorf("IncrementLeads error = %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if got := store.get("u1").CurrentMonthLeads; got != workers*perWorker {
		t.Fatalf("CurrentMonthLeads = %d, want %d", got, workers*perWorker)
	}
}

func TestGuardPackageLifecycle(t *testing.T) {
	store := newMemorySubscriptionStore()
	store.put(activeSub("u1", models.PlanBasic))

	guard := NewEntitlementGuard(store, "u1")
	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error = %v", err)
	}

	if err := guard.ConsumePackage(context.Background()); err != nil {
		t.Fatalf("ConsumePackage error = %v", err)
	}
	if got := store.get("u1").UsedStoragePackage; got != 1 {
		t.Fatalf("UsedStoragePackage = %d, want 1", got)
	}

	if err := guard.ReleasePackage(context.Background()); err != nil {
		t.Fatalf("ReleasePackage error = %v", err)
	}
	if got := store.get("u1").UsedStoragePackage; got != 0 {
		t.Fatalf("UsedStoragePackage = %d, want 0", got)
	}

	// Releasing below zero is rejected, the counter stays put.
	if err := guard.ReleasePackage(context.Background()); err != ErrStorageLimitReached {
		t.Fatalf("ReleasePackage below zero error = %v, want ErrStorageLimitReached", err)
	}
}
