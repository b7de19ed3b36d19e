package models

import "time"

// User is the identity row mirrored from the auth provider on first login.
// It caches the Stripe customer id so checkout can reuse the customer.
type User struct {
	UserID           string    `db:"user_id"`
	Email            string    `db:"email"`
	Name             string    `db:"name"`
	StripeCustomerID string    `db:"stripe_customer_id"`
	LastLogin        time.Time `db:"last_login"`
}
