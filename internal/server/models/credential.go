package models

import "time"

// Credential is a stored login. Secret holds the plaintext only on the way
// in and out of the service layer; the store sees SecretCiphertext and
// SecretNonce.
type Credential struct {
	ID               string
	OwnerID          string
	Title            string
	Username         string
	Secret           string
	SecretCiphertext []byte
	SecretNonce      []byte
	URL              string
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CredentialInput is the validated payload for a new credential.
type CredentialInput struct {
	Title       string
	Username    string
	Secret      string
	URL         string
	Description string
}

// CredentialPatch carries a partial update. Nil fields are left unchanged.
type CredentialPatch struct {
	Title       *string
	Username    *string
	Secret      *string
	URL         *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p CredentialPatch) Empty() bool {
	return p.Title == nil && p.Username == nil && p.Secret == nil && p.URL == nil && p.Description == nil
}

// Summary is the dashboard view of an owner's vault.
type Summary struct {
	Total  int
	Recent []*Credential
}
