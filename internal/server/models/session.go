package models

import "time"

// Identity is the authenticated caller, resolved once per request from a
// verified session token.
type Identity struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// IsZero reports whether no user is bound.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// Session is a freshly issued session token.
type Session struct {
	Token    string
	Identity Identity
}

// RevokedToken marks a session token id as no longer valid until the
// token would have expired anyway.
type RevokedToken struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	RevokedAt time.Time
}
