package app

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/HimangshuPronoy/LeadGen/app/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
)

// InitStripe wires the Stripe API key from the environment.
func InitStripe() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config for stripe: %v", err)
	}
	stripe.Key = cfg.Stripe.SecretKey
}

// findStripeCustomer resolves an existing Stripe Customer for the user.
// It checks users.stripe_customer_id first, then falls back to a lookup
// by email. A miss returns "" and the checkout session is created with
// customer_email instead, letting Stripe create the customer implicitly.
func findStripeCustomer(ctx context.Context, userID, email string) (string, error) {
	if email == "" {
		return "", errors.New("missing email")
	}

	if db != nil && userID != "" {
		var stripeID sql.NullString
		err := db.QueryRowContext(
			ctx,
			`
				SELECT stripe_customer_id
				FROM users
				WHERE user_id = $1;
			`,
			userID,
		).Scan(&stripeID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		if stripeID.Valid && stripeID.String != "" {
			return stripeID.String, nil
		}
	}

	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	params.Context = ctx
	iter := customer.List(params)
	for iter.Next() {
		id := iter.Customer().ID
		cacheStripeCustomer(ctx, userID, id)
		return id, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}

	return "", nil
}

func cacheStripeCustomer(ctx context.Context, userID, customerID string) {
	if db == nil || userID == "" || customerID == "" {
		return
	}
	_, err := db.ExecContext(
		ctx,
		`
			UPDATE users
			SET stripe_customer_id = $1
			WHERE user_id = $2;
		`,
		customerID,
		userID,
	)
	if err != nil {
		log.Printf("failed to cache stripe customer user=%s: %v", userID, err)
	}
}
