// Package app decodes checkout metadata into typed entitlement grants.
package app

import (
	"github.com/stripe/stripe-go/v79"

	"github.com/HimangshuPronoy/LeadGen/app/models"
)

// Grant is one entitlement mutation decoded from a completed checkout
// session. The webhook reconciler decodes the metadata bag exactly once
// and dispatches on the concrete type.
type Grant interface {
	isGrant()
}

// PlanGrant replaces the user's active subscription with a plan's quotas.
type PlanGrant struct {
	UserID     string
	Plan       models.PlanType
	CustomerID string
	SessionID  string
}

// StorageGrant raises the user's package ceiling by the fixed increment.
type StorageGrant struct {
	UserID string
}

func (PlanGrant) isGrant()    {}
func (StorageGrant) isGrant() {}

// decodeGrants extracts every grant a completed session carries. The plan
// and storage branches are independent conditionals, not an if/else: a
// session could in principle carry both. Sessions with unknown plan types
// or missing metadata decode to nothing and the event becomes a no-op.
func decodeGrants(sess *stripe.CheckoutSession) []Grant {
	if sess == nil || sess.Metadata == nil {
		return nil
	}

	var grants []Grant

	if sess.Mode == stripe.CheckoutSessionModePayment {
		userID := sess.Metadata["user_id"]
		planType := models.PlanType(sess.Metadata["plan_type"])
		if userID != "" && planType != "" && models.ValidPlan(planType) {
			customerID := ""
			if sess.Customer != nil {
				customerID = sess.Customer.ID
			}
			grants = append(grants, PlanGrant{
				UserID:     userID,
				Plan:       planType,
				CustomerID: customerID,
				SessionID:  sess.ID,
			})
		}
	}

	if sess.Metadata["upgrade_type"] == "storage" {
		if userID := sess.Metadata["user_id"]; userID != "" {
			grants = append(grants, StorageGrant{UserID: userID})
		}
	}

	return grants
}
