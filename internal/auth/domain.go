// Package auth implements the session-cookie authentication core:
// credential hashing, the session store, the auth service and the
// request middleware.
package auth

import "time"

// Subscription lifecycle values stored on a user.
const (
	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// TrialPeriod is the window after registration during which a new
// account keeps SubscriptionTrial status.
const TrialPeriod = 14 * 24 * time.Hour

// DefaultSessionTTL is the absolute session lifetime.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionCookieName is the cookie carrying the session identifier.
const SessionCookieName = "session_id"

// User is an account record. The password hash never serializes.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	FirstName          string     `json:"firstName,omitempty"`
	LastName           string     `json:"lastName,omitempty"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	TrialEndsAt        *time.Time `json:"trialEndsAt,omitempty"`
	IsActive           bool       `json:"isActive"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Session binds an opaque identifier to a user and an absolute expiry.
// A session is valid only while now < ExpiresAt; a user may hold any
// number of concurrent sessions.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
