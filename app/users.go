// Package app provides user persistence helpers for authenticated requests.
package app

import (
	"context"
	"database/sql"
	"strings"

	"github.com/HimangshuPronoy/LeadGen/app/models"
	"github.com/HimangshuPronoy/LeadGen/auth"
)

// UpsertUserFromClaims creates a user row if it does not already exist.
func UpsertUserFromClaims(ctx context.Context, claims *auth.Claims) error {
	if db == nil {
		return nil
	}
	if claims == nil || claims.Subject == "" {
		return nil
	}

	email := readStringClaim(claims.Raw, "email")
	name := readStringClaim(claims.Raw, "name")

	const q = `
		INSERT INTO users (user_id, email, name, last_login)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET last_login = now();
	`

	_, err := db.ExecContext(
		ctx,
		q,
		claims.Subject,
		nullIfEmpty(email),
		nullIfEmpty(name),
	)
	return err
}

func getUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	if db == nil {
		return models.User{}, sql.ErrNoRows
	}
	var email, name, customerID sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT email, name, stripe_customer_id, last_login
		FROM users
		WHERE user_id = $1;
	`, userID).Scan(&email, &name, &customerID, &user.LastLogin)
	if err != nil {
		return models.User{}, err
	}
	user.UserID = userID
	user.Email = email.String
	user.Name = name.String
	user.StripeCustomerID = customerID.String
	return user, nil
}

func readStringClaim(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	val, ok := raw[key]
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
