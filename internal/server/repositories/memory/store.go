// Package memory is a map-backed implementation of the server repositories,
// used for development (-d memory://) and end-to-end tests. It honours the
// same uniqueness, foreign key and owner-scoping rules as the PostgreSQL
// schema. It ignores the dbx.DBTX handle it is given, so transactions are
// not atomic across calls.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Store holds all rows behind a single RWMutex.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	credentials map[string]*models.Credential
	revoked     map[string]*models.RevokedToken
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		credentials: make(map[string]*models.Credential),
		revoked:     make(map[string]*models.RevokedToken),
		now:         time.Now,
	}
}

// RepositoryManager vends repositories backed by one Store.
type RepositoryManager struct {
	store *Store
}

func NewRepositoryManager(s *Store) *RepositoryManager {
	return &RepositoryManager{store: s}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return userRepo{m.store} }

func (m *RepositoryManager) Credentials(dbx.DBTX) credentials.Repository {
	return credentialRepo{m.store}
}

func (m *RepositoryManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository {
	return revokedRepo{m.store}
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()

	stored := *user
	r.s.users[user.ID] = &stored

	return user, nil
}

func (r userRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r userRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

// --- credentials ---

type credentialRepo struct{ s *Store }

func cloneCredential(c *models.Credential) *models.Credential {
	out := *c
	out.SecretCiphertext = append([]byte(nil), c.SecretCiphertext...)
	out.SecretNonce = append([]byte(nil), c.SecretNonce...)
	return &out
}

// storedCredential is the copy kept in the map. Like a database row it holds
// only the sealed secret, never the plaintext.
func storedCredential(c *models.Credential) *models.Credential {
	out := cloneCredential(c)
	out.Secret = ""
	return out
}

func (r credentialRepo) Create(ctx context.Context, c *models.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[c.OwnerID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.s.credentials[c.ID]; ok {
		return common.ErrorAlreadyExists
	}

	r.s.credentials[c.ID] = storedCredential(c)
	return nil
}

func (r credentialRepo) owned(ownerID string) []*models.Credential {
	result := make([]*models.Credential, 0)
	for _, c := range r.s.credentials {
		if c.OwnerID == ownerID {
			result = append(result, cloneCredential(c))
		}
	}
	return result
}

func (r credentialRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := r.owned(ownerID)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r credentialRepo) ListRecentlyUpdated(ctx context.Context, ownerID string, limit int) ([]*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := r.owned(ownerID)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r credentialRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, c := range r.s.credentials {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r credentialRepo) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.credentials[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneCredential(c), nil
}

func (r credentialRepo) Update(ctx context.Context, c *models.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.credentials[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return common.ErrorNotFound
	}

	updated := storedCredential(c)
	updated.CreatedAt = existing.CreatedAt
	r.s.credentials[c.ID] = updated
	return nil
}

func (r credentialRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.credentials[id]
	if !ok || existing.OwnerID != ownerID {
		return false, nil
	}
	delete(r.s.credentials, id)
	return true, nil
}

// --- revoked tokens ---

type revokedRepo struct{ s *Store }

func (r revokedRepo) Create(ctx context.Context, t *models.RevokedToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[t.UserID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.s.revoked[t.TokenID]; ok {
		return nil
	}
	c := *t
	r.s.revoked[t.TokenID] = &c
	return nil
}

func (r revokedRepo) Exists(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.revoked[tokenID]
	return ok, nil
}

func (r revokedRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.revoked {
		if t.ExpiresAt.Before(now) {
			delete(r.s.revoked, id)
			n++
		}
	}
	return n, nil
}
