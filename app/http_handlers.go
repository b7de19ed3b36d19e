package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/HimangshuPronoy/LeadGen/app/models"
	"github.com/HimangshuPronoy/LeadGen/auth"

	"github.com/gin-gonic/gin"
)

const maxLeadsPerGeneration = 100

// LeadHandlers owns the generation and package endpoints. Every mutating
// action goes through an EntitlementGuard built from the injected store.
type LeadHandlers struct {
	subs SubscriptionStore
	gen  LeadGenerator
}

func NewLeadHandlers(subs SubscriptionStore, gen LeadGenerator) *LeadHandlers {
	return &LeadHandlers{subs: subs, gen: gen}
}

func (h *LeadHandlers) guardFor(c *gin.Context) (*EntitlementGuard, string, bool) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok || claims.Subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return nil, "", false
	}
	return NewEntitlementGuard(h.subs, claims.Subject), claims.Subject, true
}

// GenerateLeads asks the provider for candidate leads. The entitlement
// check runs before any external call; consumed credits are recorded for
// the leads actually returned.
func (h *LeadHandlers) GenerateLeads(c *gin.Context) {
	guard, userID, ok := h.guardFor(c)
	if !ok {
		return
	}

	var req models.GenerateLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query required"})
		return
	}
	if req.LeadCount < 1 || req.LeadCount > maxLeadsPerGeneration {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lead count must be between 1 and 100"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 90*time.Second)
	defer cancel()

	if err := guard.Refresh(ctx); err != nil {
		log.Printf("entitlement refresh failed user=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}
	if !guard.CanGenerateLeads() {
		c.JSON(http.StatusForbidden, gin.H{"error": "out of credits, purchase a credit pack to continue generating leads"})
		return
	}
	if remaining := guard.RemainingLeads(); remaining != models.UnlimitedLeads && req.LeadCount > remaining {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "not enough credits for the requested lead count",
			"remaining": remaining,
		})
		return
	}

	leads, err := h.gen.Generate(ctx, req)
	if err != nil {
		log.Printf("lead generation failed user=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Deduct what was actually produced. A failure here is logged but does
	// not take the results away from the user.
	if err := guard.ConsumeLeads(ctx, len(leads)); err != nil {
		log.Printf("credit deduction failed user=%s count=%d: %v", userID, len(leads), err)
	}

	if err := saveSearchHistory(ctx, userID, req.Query, len(leads)); err != nil {
		// History is best effort, never fail the search over it.
		log.Printf("search history save failed user=%s: %v", userID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"leads":     leads,
		"count":     len(leads),
		"remaining": guard.RemainingLeads(),
	})
}

// SavePackage persists selected leads as a named package and records the
// consumed storage slot.
func (h *LeadHandlers) SavePackage(c *gin.Context) {
	guard, userID, ok := h.guardFor(c)
	if !ok {
		return
	}

	var req models.SavePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.PackageName = strings.TrimSpace(req.PackageName)
	if req.PackageName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "package name required"})
		return
	}
	if len(req.Leads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no leads to save"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := guard.Refresh(ctx); err != nil {
		log.Printf("entitlement refresh failed user=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}
	if !guard.CanSavePackage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "storage package limit reached, upgrade storage to save more packages"})
		return
	}

	pkg, err := savePackage(ctx, userID, req)
	if err != nil {
		log.Printf("package save failed user=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := guard.ConsumePackage(ctx); err != nil {
		log.Printf("storage deduction failed user=%s package=%s: %v", userID, pkg.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"package": pkg})
}

// GetPackages lists the user's saved packages.
func (h *LeadHandlers) GetPackages(c *gin.Context) {
	_, userID, ok := h.guardFor(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	packages, err := listPackages(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"packages": packages,
		"count":    len(packages),
	})
}

// GetPackageLeads lists the leads saved under one package.
func (h *LeadHandlers) GetPackageLeads(c *gin.Context) {
	_, userID, ok := h.guardFor(c)
	if !ok {
		return
	}
	packageID := c.Param("id")
	if packageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing package id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	leads, err := listLeads(ctx, userID, packageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"count": len(leads),
	})
}

// GetAllLeads lists every lead the user has saved.
func (h *LeadHandlers) GetAllLeads(c *gin.Context) {
	_, userID, ok := h.guardFor(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	leads, err := listLeads(ctx, userID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"count": len(leads),
	})
}

// DeletePackage removes a package and releases its storage slot. The leads
// survive with their package reference cleared.
func (h *LeadHandlers) DeletePackage(c *gin.Context) {
	guard, userID, ok := h.guardFor(c)
	if !ok {
		return
	}
	packageID := c.Param("id")
	if packageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing package id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := deletePackage(ctx, userID, packageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := guard.Refresh(ctx); err == nil {
		if err := guard.ReleasePackage(ctx); err != nil {
			log.Printf("storage release failed user=%s package=%s: %v", userID, packageID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetHistory lists recent generation requests.
func (h *LeadHandlers) GetHistory(c *gin.Context) {
	_, userID, ok := h.guardFor(c)
	if !ok {
		return
	}

	limit := 50
	if q := c.Query("limit"); q != "" {
		if v, err := parsePositiveInt(q); err == nil && v > 0 {
			limit = v
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	history, err := listSearchHistory(ctx, userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": history,
		"count":   len(history),
	})
}

// GetStats returns the dashboard counters.
func (h *LeadHandlers) GetStats(c *gin.Context) {
	_, userID, ok := h.guardFor(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := fetchDashboardStats(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
