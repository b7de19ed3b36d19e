// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"time"

	"github.com/HimangshuPronoy/LeadGen/app/config"
	"github.com/HimangshuPronoy/LeadGen/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	subs := NewPostgresSubscriptionStore(db)
	billing := NewBillingHandlers(cfg, subs)
	leads := NewLeadHandlers(subs, NewOpenRouterGenerator(cfg.Generator))

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)
	// The webhook authenticates with the Stripe signature, never a session.
	router.POST("/api/stripe/webhook", billing.StripeWebhook)

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{
		OnAuthenticated: func(c *gin.Context, claims *auth.Claims) error {
			return UpsertUserFromClaims(c.Request.Context(), claims)
		},
	}))
	protected.GET("/me/subscription", leads.Me)
	protected.POST("/api/leads/generate", leads.GenerateLeads)
	protected.GET("/api/leads", leads.GetAllLeads)
	protected.POST("/api/packages", leads.SavePackage)
	protected.GET("/api/packages", leads.GetPackages)
	protected.GET("/api/packages/:id/leads", leads.GetPackageLeads)
	protected.DELETE("/api/packages/:id", leads.DeletePackage)
	protected.GET("/api/history", leads.GetHistory)
	protected.GET("/api/stats", leads.GetStats)
	protected.POST("/api/billing/create-checkout-session", billing.CreateCheckoutSession)
	protected.POST("/api/billing/create-storage-upgrade", billing.CreateStorageUpgrade)

	return router, nil
}
