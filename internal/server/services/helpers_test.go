package services

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// fakeHasher avoids bcrypt cost in tests while keeping hash != password.
type fakeHasher struct {
	verifies atomic.Int32
}

func (h *fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *fakeHasher) Verify(password, hash string) (bool, error) {
	h.verifies.Add(1)
	return strings.TrimPrefix(hash, "hashed:") == password && strings.HasPrefix(hash, "hashed:"), nil
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:               "test-secret",
		SessionValidityDuration: time.Hour,
		QueryTimeout:            time.Second,
		ExportLinkValidity:      15 * time.Minute,
		S3Region:                "us-east-1",
		S3RootUser:              "minioadmin",
		S3RootPassword:          "minioadmin",
		S3BaseEndpoint:          "http://127.0.0.1:9000",
		S3Bucket:                "vault",
	}
}

func testKeyRing(t *testing.T) *cryptox.KeyRing {
	t.Helper()
	k, err := cryptox.NewKeyRing(bytes.Repeat([]byte{42}, cryptox.KeySize))
	require.NoError(t, err)
	return k
}

type testEnv struct {
	store       *repomanager.Store
	hasher      *fakeHasher
	users       *UserService
	credentials *CredentialService
	keys        *cryptox.KeyRing
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repomanager.NewMemoryStore()
	hasher := &fakeHasher{}
	cfg := testConfig()

	us, err := NewUserService(store, hasher, cfg)
	require.NoError(t, err)

	keys := testKeyRing(t)

	return &testEnv{
		store:       store,
		hasher:      hasher,
		users:       us,
		credentials: NewCredentialService(store, keys, cfg),
		keys:        keys,
	}
}

// login registers email/password and returns the verified identity.
func (e *testEnv) login(t *testing.T, email, password string) models.Identity {
	t.Helper()
	ctx := context.Background()

	_, err := e.users.Register(ctx, email, password, "")
	require.NoError(t, err)

	sess, err := e.users.Authenticate(ctx, email, password)
	require.NoError(t, err)

	id, err := e.users.VerifySession(ctx, sess.Token)
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T { return &v }
