// Package app persists entitlement records and applies webhook grants.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/HimangshuPronoy/LeadGen/app/models"
)

// Quota violations surfaced by the conditional increments.
var (
	ErrLeadQuotaExceeded   = errors.New("lead quota exceeded")
	ErrStorageLimitReached = errors.New("storage package limit reached")
)

// SubscriptionStore is the entitlement store contract. Handlers receive an
// implementation through their constructors; nothing reads it ambiently.
type SubscriptionStore interface {
	// GetActive returns the single active record for the user, or nil if
	// the user has never paid.
	GetActive(ctx context.Context, userID string) (*models.Subscription, error)

	// IncrementLeads adds delta to current_month_leads as a single atomic
	// statement. Returns ErrLeadQuotaExceeded when the add would pass the
	// plan ceiling (unlimited plans always succeed).
	IncrementLeads(ctx context.Context, userID string, delta int) error

	// IncrementStorageUsed adds delta (may be negative on package delete)
	// to used_storage_packages atomically. Returns ErrStorageLimitReached
	// when the add would pass max_storage_packages.
	IncrementStorageUsed(ctx context.Context, userID string, delta int) error

	// ApplyEvent records the provider event id and applies every grant in
	// one transaction. A previously recorded event id short-circuits with
	// applied=false and no mutation, which keeps retried webhook
	// deliveries from double-granting. A failed grant rolls the event
	// record back so the provider's retry reprocesses it.
	ApplyEvent(ctx context.Context, eventID, eventType string, grants []Grant) (applied bool, err error)
}

// PostgresSubscriptionStore implements SubscriptionStore on database/sql.
type PostgresSubscriptionStore struct {
	db *sql.DB
}

func NewPostgresSubscriptionStore(db *sql.DB) *PostgresSubscriptionStore {
	return &PostgresSubscriptionStore{db: db}
}

func (s *PostgresSubscriptionStore) GetActive(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	var customerID, sessionID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, plan_type, leads_per_month, current_month_leads,
		       max_storage_packages, used_storage_packages, status,
		       stripe_customer_id, stripe_session_id,
		       current_period_start, current_period_end
		FROM subscriptions
		WHERE user_id = $1 AND status = $2;
	`, userID, models.StatusActive).Scan(
		&sub.UserID,
		&sub.PlanType,
		&sub.LeadsPerMonth,
		&sub.CurrentMonthLeads,
		&sub.MaxStoragePackages,
		&sub.UsedStoragePackage,
		&sub.Status,
		&customerID,
		&sessionID,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sub.StripeCustomerID = customerID.String
	sub.StripeSessionID = sessionID.String
	return &sub, nil
}

// IncrementLeads guards the plan ceiling inside the UPDATE itself so two
// concurrent consumers can never produce a lost update or overshoot.
func (s *PostgresSubscriptionStore) IncrementLeads(ctx context.Context, userID string, delta int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET current_month_leads = current_month_leads + $1
		WHERE user_id = $2
		  AND status = $3
		  AND (leads_per_month = -1 OR current_month_leads + $1 <= leads_per_month);
	`, delta, userID, models.StatusActive)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrLeadQuotaExceeded
	}
	return nil
}

func (s *PostgresSubscriptionStore) IncrementStorageUsed(ctx context.Context, userID string, delta int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET used_storage_packages = used_storage_packages + $1
		WHERE user_id = $2
		  AND status = $3
		  AND used_storage_packages + $1 >= 0
		  AND used_storage_packages + $1 <= max_storage_packages;
	`, delta, userID, models.StatusActive)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrStorageLimitReached
	}
	return nil
}

func (s *PostgresSubscriptionStore) ApplyEvent(ctx context.Context, eventID, eventType string, grants []Grant) (bool, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO webhook_events (event_id, event_type, received_at)
		VALUES ($1, $2, now())
		ON CONFLICT (event_id) DO NOTHING;
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Redelivery of an event we already handled.
		log.Printf("webhook event already processed id=%s type=%s", eventID, eventType)
		return false, nil
	}

	for _, grant := range grants {
		switch g := grant.(type) {
		case PlanGrant:
			if err := applyPlanGrant(ctx, tx, g); err != nil {
				return false, err
			}
		case StorageGrant:
			if err := applyStorageGrant(ctx, tx, g); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// applyPlanGrant upserts the entitlement row keyed on user_id: a repeat
// purchase replaces plan and quota fields in place, it never creates a
// second active row.
func applyPlanGrant(ctx context.Context, tx *sql.Tx, g PlanGrant) error {
	cfg, ok := models.PlanConfigs[g.Plan]
	if !ok {
		return nil
	}

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, models.GrantValidityMonths, 0)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO subscriptions (
			user_id, plan_type, leads_per_month, current_month_leads,
			max_storage_packages, used_storage_packages, status,
			stripe_customer_id, stripe_session_id,
			current_period_start, current_period_end
		)
		VALUES ($1, $2, $3, 0, $4, 0, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_type = EXCLUDED.plan_type,
			leads_per_month = EXCLUDED.leads_per_month,
			current_month_leads = 0,
			max_storage_packages = EXCLUDED.max_storage_packages,
			used_storage_packages = 0,
			status = EXCLUDED.status,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_session_id = EXCLUDED.stripe_session_id,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end;
	`,
		g.UserID,
		g.Plan,
		cfg.LeadsPerMonth,
		cfg.MaxStorage,
		models.StatusActive,
		nullIfEmpty(g.CustomerID),
		nullIfEmpty(g.SessionID),
		now,
		periodEnd,
	)
	return err
}

// applyStorageGrant raises the ceiling with a server-side add, never a
// compute-then-set from a stale read. A user with no active subscription
// has no row to raise; that is logged and skipped.
func applyStorageGrant(ctx context.Context, tx *sql.Tx, g StorageGrant) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET max_storage_packages = max_storage_packages + $1
		WHERE user_id = $2 AND status = $3;
	`, models.StorageUpgradeIncrement, g.UserID, models.StatusActive)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		log.Printf("storage grant skipped, no active subscription user=%s", g.UserID)
	}
	return nil
}
