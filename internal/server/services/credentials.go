package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RecentLimit caps the recently updated list in a Summary.
const RecentLimit = 10

// CredentialService stores credentials on behalf of an authenticated owner.
// Every operation takes the caller's Identity; owner ids supplied by clients
// are never consulted. Secrets are sealed before they reach the store and
// opened only on the way back to the owner.
type CredentialService struct {
	store        *repomanager.Store
	sealer       cryptox.Sealer
	queryTimeout time.Duration
	now          func() time.Time
}

func NewCredentialService(store *repomanager.Store, sealer cryptox.Sealer, cfg *config.Config) *CredentialService {
	return &CredentialService{
		store:        store,
		sealer:       sealer,
		queryTimeout: cfg.QueryTimeout,
		now:          time.Now,
	}
}

// AssertOwner returns c when id owns it and common.ErrorNotFound otherwise,
// so a foreign record looks exactly like a missing one.
func AssertOwner(id models.Identity, c *models.Credential) (*models.Credential, error) {
	if c == nil || id.IsZero() || c.OwnerID != id.UserID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func validateInput(in *models.CredentialInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Username = strings.TrimSpace(in.Username)
	in.URL = strings.TrimSpace(in.URL)
	in.Description = strings.TrimSpace(in.Description)

	var fields []string
	if in.Title == "" {
		fields = append(fields, "title")
	}
	if in.Username == "" {
		fields = append(fields, "username")
	}
	if in.Secret == "" {
		fields = append(fields, "password")
	}
	if len(fields) > 0 {
		return common.NewValidationError("missing required fields", fields...)
	}
	return nil
}

// applyPatch copies present fields of p onto c. Title, username and
// secret may not be set to empty; url and description may be cleared.
func applyPatch(c *models.Credential, p models.CredentialPatch) error {
	var fields []string

	if p.Title != nil {
		if v := strings.TrimSpace(*p.Title); v != "" {
			c.Title = v
		} else {
			fields = append(fields, "title")
		}
	}
	if p.Username != nil {
		if v := strings.TrimSpace(*p.Username); v != "" {
			c.Username = v
		} else {
			fields = append(fields, "username")
		}
	}
	if p.Secret != nil {
		if *p.Secret != "" {
			c.Secret = *p.Secret
		} else {
			fields = append(fields, "password")
		}
	}
	if p.URL != nil {
		c.URL = strings.TrimSpace(*p.URL)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}

	if len(fields) > 0 {
		return common.NewValidationError("fields must not be empty", fields...)
	}
	return nil
}

func (s *CredentialService) seal(c *models.Credential) error {
	ct, nonce, err := s.sealer.Seal(c.OwnerID, c.ID, []byte(c.Secret))
	if err != nil {
		return err
	}
	c.SecretCiphertext = ct
	c.SecretNonce = nonce
	return nil
}

func (s *CredentialService) open(c *models.Credential) error {
	pt, err := s.sealer.Open(c.OwnerID, c.ID, c.SecretCiphertext, c.SecretNonce)
	if err != nil {
		return err
	}
	c.Secret = string(pt)
	return nil
}

func (s *CredentialService) openAll(list []*models.Credential) error {
	for _, c := range list {
		if err := s.open(c); err != nil {
			return err
		}
	}
	return nil
}

// List returns the owner's credentials, newest first, with secrets opened.
func (s *CredentialService) List(ctx context.Context, id models.Identity) ([]*models.Credential, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	list, err := s.store.Repos.Credentials(s.store.DB).ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, internalError("error listing credentials", err)
	}
	if err := s.openAll(list); err != nil {
		return nil, internalError("error decrypting credential", err)
	}
	return list, nil
}

// Create stores a new credential for the owner. A missing owner row
// yields common.ErrorNotFound.
func (s *CredentialService) Create(ctx context.Context, id models.Identity, in models.CredentialInput) (*models.Credential, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.store.Repos.Users(s.store.DB).GetUserByID(ctx, id.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user not found", common.ErrorNotFound)
		}
		return nil, internalError("error loading owner", err)
	}

	now := s.now().UTC()
	c := &models.Credential{
		ID:          uuid.NewString(),
		OwnerID:     id.UserID,
		Title:       in.Title,
		Username:    in.Username,
		Secret:      in.Secret,
		URL:         in.URL,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.seal(c); err != nil {
		return nil, internalError("error encrypting credential", err)
	}

	if err := s.store.Repos.Credentials(s.store.DB).Create(ctx, c); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalError("error creating credential", err)
	}

	return c, nil
}

// Update applies p to the owner's credential recordID in one transaction.
func (s *CredentialService) Update(ctx context.Context, id models.Identity, recordID string, p models.CredentialPatch) (*models.Credential, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if recordID == "" {
		return nil, common.NewValidationError("missing required fields", "id")
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	var result *models.Credential
	err := s.store.Tx.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.store.Repos.Credentials(tx)

		loaded, err := repo.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		c, err := AssertOwner(id, loaded)
		if err != nil {
			return err
		}
		if err := s.open(c); err != nil {
			return internalError("error decrypting credential", err)
		}

		if err := applyPatch(c, p); err != nil {
			return err
		}

		c.UpdatedAt = s.now().UTC()
		if c.UpdatedAt.Before(c.CreatedAt) {
			c.UpdatedAt = c.CreatedAt
		}

		if p.Secret != nil {
			if err := s.seal(c); err != nil {
				return internalError("error encrypting credential", err)
			}
		}

		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		result = c
		return nil
	})

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorInternal):
		return nil, err
	default:
		return nil, internalError("error updating credential", err)
	}
}

// Delete removes the owner's credential recordID. A row that vanished
// between the ownership check and the delete counts as deleted.
func (s *CredentialService) Delete(ctx context.Context, id models.Identity, recordID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if recordID == "" {
		return common.NewValidationError("missing required fields", "id")
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	err := s.store.Tx.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.store.Repos.Credentials(tx)

		loaded, err := repo.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if _, err := AssertOwner(id, loaded); err != nil {
			return err
		}

		_, err = repo.Delete(ctx, recordID, id.UserID)
		return err
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	default:
		return internalError("error deleting credential", err)
	}
}

// Summary returns the owner's credential count and the RecentLimit most
// recently updated credentials.
func (s *CredentialService) Summary(ctx context.Context, id models.Identity) (*models.Summary, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	repo := s.store.Repos.Credentials(s.store.DB)

	total, err := repo.CountByOwner(ctx, id.UserID)
	if err != nil {
		return nil, internalError("error counting credentials", err)
	}

	recent, err := repo.ListRecentlyUpdated(ctx, id.UserID, RecentLimit)
	if err != nil {
		return nil, internalError("error listing credentials", err)
	}
	if err := s.openAll(recent); err != nil {
		return nil, internalError("error decrypting credential", err)
	}

	return &models.Summary{Total: total, Recent: recent}, nil
}
