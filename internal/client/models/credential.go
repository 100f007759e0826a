// Package models holds the client-side view of API payloads.
package models

import "time"

// Credential is a stored login as returned by the API.
type Credential struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CredentialInput is the payload for a new credential.
type CredentialInput struct {
	Title       string `json:"title"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// CredentialPatch carries only the fields to change.
type CredentialPatch struct {
	Title       *string `json:"title,omitempty"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p CredentialPatch) Empty() bool {
	return p.Title == nil && p.Username == nil && p.Password == nil && p.URL == nil && p.Description == nil
}

// Session describes the logged-in user.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token,omitempty"`
}

// User is a freshly registered account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Dashboard is the vault summary.
type Dashboard struct {
	TotalPasswords int          `json:"totalPasswords"`
	Passwords      []Credential `json:"passwords"`
}

// Export points at an encrypted vault export in object storage.
type Export struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
	Count     int       `json:"count"`
}
