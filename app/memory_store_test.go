package app

import (
	"context"
	"sync"
	"time"

	"github.com/HimangshuPronoy/LeadGen/app/models"
)

// memorySubscriptionStore mirrors the Postgres store semantics for tests:
// conditional atomic increments, upsert keyed on user id, and event-id
// deduplication.
type memorySubscriptionStore struct {
	mu     sync.Mutex
	subs   map[string]*models.Subscription
	events map[string]bool
}

func newMemorySubscriptionStore() *memorySubscriptionStore {
	return &memorySubscriptionStore{
		subs:   map[string]*models.Subscription{},
		events: map[string]bool{},
	}
}

func (m *memorySubscriptionStore) GetActive(ctx context.Context, userID string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID]
	if !ok || sub.Status != models.StatusActive {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (m *memorySubscriptionStore) IncrementLeads(ctx context.Context, userID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID]
	if !ok || sub.Status != models.StatusActive {
		return ErrLeadQuotaExceeded
	}
	if sub.LeadsPerMonth != models.UnlimitedLeads && sub.CurrentMonthLeads+delta > sub.LeadsPerMonth {
		return ErrLeadQuotaExceeded
	}
	sub.CurrentMonthLeads += delta
	return nil
}

func (m *memorySubscriptionStore) IncrementStorageUsed(ctx context.Context, userID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID]
	if !ok || sub.Status != models.StatusActive {
		return ErrStorageLimitReached
	}
	next := sub.UsedStoragePackage + delta
	if next < 0 || next > sub.MaxStoragePackages {
		return ErrStorageLimitReached
	}
	sub.UsedStoragePackage = next
	return nil
}

func (m *memorySubscriptionStore) ApplyEvent(ctx context.Context, eventID, eventType string, grants []Grant) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events[eventID] {
		return false, nil
	}
	m.events[eventID] = true

	for _, grant := range grants {
		switch g := grant.(type) {
		case PlanGrant:
			cfg, ok := models.PlanConfigs[g.Plan]
			if !ok {
				continue
			}
			now := time.Now().UTC()
			m.subs[g.UserID] = &models.Subscription{
				UserID:             g.UserID,
				PlanType:           g.Plan,
				LeadsPerMonth:      cfg.LeadsPerMonth,
				CurrentMonthLeads:  0,
				MaxStoragePackages: cfg.MaxStorage,
				UsedStoragePackage: 0,
				Status:             models.StatusActive,
				StripeCustomerID:   g.CustomerID,
				StripeSessionID:    g.SessionID,
				CurrentPeriodStart: now,
				CurrentPeriodEnd:   now.AddDate(0, models.GrantValidityMonths, 0),
			}
		case StorageGrant:
			if sub, ok := m.subs[g.UserID]; ok && sub.Status == models.StatusActive {
				sub.MaxStoragePackages += models.StorageUpgradeIncrement
			}
		}
	}
	return true, nil
}

func (m *memorySubscriptionStore) put(sub models.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := sub
	m.subs[sub.UserID] = &copied
}

func (m *memorySubscriptionStore) get(userID string) models.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[userID]; ok {
		return *sub
	}
	return models.Subscription{}
}
