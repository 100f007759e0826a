// Package revokedtokens persists the ids of session tokens that were
// logged out before their natural expiry.
package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

// Repository defines operations for revoking session tokens.
type Repository interface {
	// Create records t. Revoking an already revoked token is not an error.
	Create(ctx context.Context, t *models.RevokedToken) error

	// Exists reports whether tokenID has been revoked.
	Exists(ctx context.Context, tokenID string) (bool, error)

	// DeleteExpired removes rows whose token expired before now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
