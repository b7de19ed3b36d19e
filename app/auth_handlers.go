// Package app provides public health and authenticated identity endpoints.
package app

import (
	"net/http"

	"github.com/HimangshuPronoy/LeadGen/app/models"

	"github.com/gin-gonic/gin"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Me returns the active entitlement snapshot and the derived permissions
// for the authenticated user. The front-end re-reads this after returning
// from a payment redirect and after every generate/save; the query
// parameters on the redirect are informational only.
func (h *LeadHandlers) Me(c *gin.Context) {
	guard, userID, ok := h.guardFor(c)
	if !ok {
		return
	}

	if err := guard.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}

	profile := gin.H{"user_id": userID}
	if user, err := getUser(c.Request.Context(), userID); err == nil {
		profile["email"] = user.Email
		profile["name"] = user.Name
	}

	sub := guard.Subscription()
	if sub == nil {
		// Never paid: no permissions, no record.
		c.JSON(http.StatusOK, gin.H{
			"user":             profile,
			"subscription":     nil,
			"canGenerateLeads": false,
			"canSavePackage":   false,
			"remainingLeads":   0,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": profile,
		"subscription": gin.H{
			"plan_type":             sub.PlanType,
			"leads_per_month":       sub.LeadsPerMonth,
			"current_month_leads":   sub.CurrentMonthLeads,
			"max_storage_packages":  sub.MaxStoragePackages,
			"used_storage_packages": sub.UsedStoragePackage,
			"status":                sub.Status,
			"current_period_start":  sub.CurrentPeriodStart,
			"current_period_end":    sub.CurrentPeriodEnd,
		},
		"canGenerateLeads": guard.CanGenerateLeads(),
		"canSavePackage":   guard.CanSavePackage(),
		"remainingLeads":   guard.RemainingLeads(),
		"unlimited":        sub.LeadsPerMonth == models.UnlimitedLeads,
	})
}
