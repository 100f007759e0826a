// Package models defines server-side data models persisted in the database
// and passed between the service and transport layers.
package models

import "time"

// User is an account. PasswordHash is a bcrypt hash and is empty for
// accounts without a local password.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
