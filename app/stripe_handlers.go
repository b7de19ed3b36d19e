package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/HimangshuPronoy/LeadGen/app/config"
	"github.com/HimangshuPronoy/LeadGen/app/models"
	"github.com/HimangshuPronoy/LeadGen/auth"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// BillingHandlers owns the checkout initiators and the webhook reconciler.
// The entitlement store is injected; the webhook is its only writer that
// creates or replaces subscription rows.
type BillingHandlers struct {
	cfg  *config.Config
	subs SubscriptionStore
}

func NewBillingHandlers(cfg *config.Config, subs SubscriptionStore) *BillingHandlers {
	return &BillingHandlers{cfg: cfg, subs: subs}
}

// CreateCheckoutSession starts a Stripe Checkout Session for a credit pack.
// The session metadata carries user_id and plan_type; that metadata is the
// only channel through which the webhook later learns who to credit.
func (b *BillingHandlers) CreateCheckoutSession(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}
	email := claims.Email()
	if claims.Subject == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated or email not available"})
		return
	}

	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !models.ValidPlan(req.PlanType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": `invalid plan type. Must be "basic" or "premium"`})
		return
	}
	planCfg := models.PlanConfigs[req.PlanType]

	customerID, err := findStripeCustomer(c.Request.Context(), claims.Subject, email)
	if err != nil {
		log.Printf("stripe customer lookup failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare billing"})
		return
	}

	var lineItem *stripe.CheckoutSessionLineItemParams
	if req.PlanType == models.PlanPremium && b.cfg.Stripe.PremiumPriceID != "" {
		// Preset price id when configured, inline price data as fallback.
		lineItem = &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(b.cfg.Stripe.PremiumPriceID),
			Quantity: stripe.Int64(1),
		}
	} else {
		lineItem = inlineLineItem(planCfg.Name, planCfg.Description, planCfg.PriceCents)
	}

	frontendURL := b.cfg.Stripe.FrontendURL
	params := &stripe.CheckoutSessionParams{
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{lineItem},
		// The plan query parameter feeds a one-time toast; it is never
		// proof of payment. Only the verified webhook event grants.
		SuccessURL:               stripe.String(fmt.Sprintf("%s/dashboard?payment=success&plan=%s", frontendURL, req.PlanType)),
		CancelURL:                stripe.String(frontendURL + "/pricing?payment=cancelled"),
		AllowPromotionCodes:      stripe.Bool(true),
		BillingAddressCollection: stripe.String("auto"),
		Metadata: map[string]string{
			"user_id":   claims.Subject,
			"plan_type": string(req.PlanType),
		},
	}
	attachCustomer(params, customerID, email)

	sess, err := session.New(params)
	if err != nil {
		log.Printf("stripe checkout session failed user=%s plan=%s: %v", claims.Subject, req.PlanType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

// CreateStorageUpgrade starts a checkout for the fixed storage add-on.
// Same shape as the plan checkout, but metadata carries upgrade_type.
func (b *BillingHandlers) CreateStorageUpgrade(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}
	email := claims.Email()
	if claims.Subject == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated or email not available"})
		return
	}

	customerID, err := findStripeCustomer(c.Request.Context(), claims.Subject, email)
	if err != nil {
		log.Printf("stripe customer lookup failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare billing"})
		return
	}

	frontendURL := b.cfg.Stripe.FrontendURL
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			inlineLineItem(models.StorageUpgradeName, models.StorageUpgradeDescription, models.StorageUpgradePriceCents),
		},
		SuccessURL: stripe.String(frontendURL + "/dashboard?payment=success&upgrade=storage"),
		CancelURL:  stripe.String(frontendURL + "/pricing?payment=cancelled"),
		Metadata: map[string]string{
			"user_id":      claims.Subject,
			"upgrade_type": "storage",
		},
	}
	attachCustomer(params, customerID, email)

	sess, err := session.New(params)
	if err != nil {
		log.Printf("stripe storage upgrade session failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

func inlineLineItem(name, description string, priceCents int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(string(stripe.CurrencyUSD)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name:        stripe.String(name),
				Description: stripe.String(description),
			},
			UnitAmount: stripe.Int64(priceCents),
		},
		Quantity: stripe.Int64(1),
	}
}

func attachCustomer(params *stripe.CheckoutSessionParams, customerID, email string) {
	if customerID != "" {
		params.Customer = stripe.String(customerID)
		return
	}
	params.CustomerEmail = stripe.String(email)
}

// StripeWebhook turns verified provider events into entitlement writes.
// The signature is the endpoint's only authentication; it has no user
// session. Unhandled event types are acknowledged so the provider does
// not retry them forever.
func (b *BillingHandlers) StripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Printf("stripe webhook read failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	endpointSecret := b.cfg.Stripe.WebhookSecret
	if endpointSecret == "" {
		log.Printf("stripe webhook secret missing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		endpointSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		log.Printf("stripe webhook signature failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("stripe session unmarshal failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session payload"})
			return
		}

		grants := decodeGrants(&sess)
		if len(grants) == 0 {
			// Missing or unknown metadata is a deliberate no-op.
			log.Printf("stripe session carried no grants id=%s", sess.ID)
			break
		}

		applied, err := b.subs.ApplyEvent(c.Request.Context(), event.ID, string(event.Type), grants)
		if err != nil {
			// 5xx makes the provider retry; ApplyEvent keeps the retry
			// from double-granting once it finally succeeds.
			log.Printf("stripe grant failed event=%s: %v", event.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if applied {
			log.Printf("stripe grants applied event=%s session=%s count=%d", event.ID, sess.ID, len(grants))
		}
	default:
		// Intentionally ignore unhandled events.
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
