// Package services contains server-side business logic: account and session
// handling (UserService), owner-scoped credential storage (CredentialService)
// and encrypted vault exports (ExportService).
package services

import (
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

// internalError tags err as an internal failure while keeping the cause
// reachable through errors.Is for logging.
func internalError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrorInternal, err)
}

func unauthorized(reason error) error {
	return fmt.Errorf("%w: %w", common.ErrorUnauthorized, reason)
}

func requireIdentity(id models.Identity) error {
	if id.IsZero() {
		return unauthorized(common.ErrInvalidToken)
	}
	return nil
}
