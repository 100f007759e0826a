package memory

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *RepositoryManager {
	t.Helper()
	return NewRepositoryManager(NewStore())
}

func createUser(t *testing.T, m *RepositoryManager) *models.User {
	t.Helper()
	u, err := m.Users(nil).Create(context.Background(), &models.User{
		Email:        gofakeit.Email(),
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func newCredential(owner string, at time.Time) *models.Credential {
	return &models.Credential{
		ID:               uuid.NewString(),
		OwnerID:          owner,
		Title:            gofakeit.AppName(),
		Username:         gofakeit.Username(),
		SecretCiphertext: []byte("ct"),
		SecretNonce:      []byte("nonce"),
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}

func TestUsers_CreateAndLookup(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	u, err := m.Users(nil).Create(ctx, &models.User{Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := m.Users(nil).GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = m.Users(nil).GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = m.Users(nil).Create(ctx, &models.User{Email: "Alice@Example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = m.Users(nil).GetUserByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = m.Users(nil).GetUserByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCredentials_OwnerScoping(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	repo := m.Credentials(nil)

	alice := createUser(t, m)
	bob := createUser(t, m)

	base := time.Now()
	older := newCredential(alice.ID, base.Add(-time.Hour))
	newer := newCredential(alice.ID, base)
	bobs := newCredential(bob.ID, base)

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, bobs))

	list, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	n, err := repo.CountByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// bob cannot update or delete alice's row
	hijack := *older
	hijack.OwnerID = bob.ID
	assert.ErrorIs(t, repo.Update(ctx, &hijack), common.ErrorNotFound)

	removed, err := repo.Delete(ctx, older.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.OwnerID)
}

func TestCredentials_CreateRequiresOwner(t *testing.T) {
	m := newManager(t)
	err := m.Credentials(nil).Create(context.Background(), newCredential("ghost", time.Now()))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCredentials_UpdateAndRecent(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	repo := m.Credentials(nil)
	owner := createUser(t, m)

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 12; i++ {
		c := newCredential(owner.ID, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, c))
		ids = append(ids, c.ID)
	}

	first, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	first.Title = "Renamed"
	first.UpdatedAt = time.Now()
	first.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, first))

	recent, err := repo.ListRecentlyUpdated(ctx, owner.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, ids[0], recent[0].ID)
	assert.Equal(t, "Renamed", recent[0].Title)
	assert.True(t, base.Equal(recent[0].CreatedAt), "update keeps created_at")
}

func TestCredentials_ReturnsCopies(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	owner := createUser(t, m)

	c := newCredential(owner.ID, time.Now())
	require.NoError(t, m.Credentials(nil).Create(ctx, c))
	c.Title = "mutated after insert"

	got, err := m.Credentials(nil).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated after insert", got.Title)

	got.SecretCiphertext[0] = 'X'
	again, err := m.Credentials(nil).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("ct"), again.SecretCiphertext)
}

func TestCredentials_PlaintextSecretNotStored(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	owner := createUser(t, m)

	c := newCredential(owner.ID, time.Now())
	c.Secret = "s3cr3t"
	require.NoError(t, m.Credentials(nil).Create(ctx, c))
	assert.Equal(t, "s3cr3t", c.Secret, "caller's value untouched")

	got, err := m.Credentials(nil).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Secret)
	assert.Equal(t, []byte("ct"), got.SecretCiphertext)

	got.Secret = "n3w"
	require.NoError(t, m.Credentials(nil).Update(ctx, got))

	again, err := m.Credentials(nil).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Secret)
}

func TestCredentials_DeleteTwice(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	owner := createUser(t, m)

	c := newCredential(owner.ID, time.Now())
	require.NoError(t, m.Credentials(nil).Create(ctx, c))

	removed, err := m.Credentials(nil).Delete(ctx, c.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.Credentials(nil).Delete(ctx, c.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRevokedTokens(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	repo := m.RevokedTokens(nil)
	owner := createUser(t, m)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.RevokedToken{TokenID: "live", UserID: owner.ID, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.RevokedToken{TokenID: "dead", UserID: owner.ID, ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.RevokedToken{TokenID: "live", UserID: owner.ID, ExpiresAt: now.Add(time.Hour)}))

	ok, err := repo.Exists(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err = repo.Exists(ctx, "dead")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanceledContext(t *testing.T) {
	m := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Users(nil).GetUserByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = m.Credentials(nil).ListByOwner(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
