// Package credentials declares and implements persistence for stored
// credentials. Every query except GetByID is scoped to an owner.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

// Repository stores credentials with their secret already sealed.
type Repository interface {
	// Create inserts c as is; the caller assigns ID and timestamps.
	Create(ctx context.Context, c *models.Credential) error
	// ListByOwner returns ownerID's credentials, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error)
	// ListRecentlyUpdated returns at most limit credentials by updated_at desc.
	ListRecentlyUpdated(ctx context.Context, ownerID string, limit int) ([]*models.Credential, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// GetByID loads a credential regardless of owner; callers must check
	// ownership before acting on it.
	GetByID(ctx context.Context, id string) (*models.Credential, error)
	// Update writes all mutable fields of c where id and owner both match.
	// It returns common.ErrorNotFound when no row matched.
	Update(ctx context.Context, c *models.Credential) error
	// Delete removes the row where id and owner match and reports whether
	// a row was removed.
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
