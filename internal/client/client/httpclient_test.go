package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/client/models"
	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/httpserver"
	sm "github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (plainHasher) Verify(password, hash string) (bool, error) {
	return hash == "h:"+password, nil
}

type stubExporter struct{}

func (stubExporter) Export(_ context.Context, id sm.Identity, passphrase string) (*sm.Export, error) {
	if passphrase == "" {
		return nil, common.NewValidationError("missing required fields", "passphrase")
	}
	return &sm.Export{Key: "users/" + id.UserID + "/x.age", URL: "http://s3.local/x.age", Count: 1}, nil
}

// newServer starts the real HTTP API over an in-memory store.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		SecretKey:               "test-secret",
		SessionValidityDuration: time.Hour,
		QueryTimeout:            time.Second,
		DevMode:                 true,
	}
	store := repomanager.NewMemoryStore()

	us, err := services.NewUserService(store, plainHasher{}, cfg)
	require.NoError(t, err)
	keys, err := cryptox.NewKeyRing(bytes.Repeat([]byte{1}, cryptox.KeySize))
	require.NoError(t, err)

	s := httpserver.NewServer(cfg, logging.Nop{}, us, services.NewCredentialService(store, keys, cfg), stubExporter{})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, url string) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(url, 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("127.0.0.1:8080", time.Second)
	require.Error(t, err)

	_, err = NewHTTPClient("ftp://host", time.Second)
	require.Error(t, err)
}

func TestHTTPClient_FullFlow(t *testing.T) {
	ts := newServer(t)
	c := newClient(t, ts.URL+"/")
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	user, err := c.Register(ctx, "Alice@Example.com", []byte("pw12345"), "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = c.Register(ctx, "alice@example.com", []byte("x"), "")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = c.List(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(ctx, "alice@example.com", []byte("wrong"))
	assert.ErrorIs(t, err, ErrUnauthorized)

	sess, err := c.Login(ctx, "alice@example.com", []byte("pw12345"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Empty(t, sess.Token, "token stays inside the client")

	me, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)

	created, err := c.Create(ctx, models.CredentialInput{Title: "Bank", Username: "alice", Password: "s3cr3t"})
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", created.Password)

	title := "Bank (joint)"
	updated, err := c.Update(ctx, created.ID, models.CredentialPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "s3cr3t", updated.Password)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, title, list[0].Title)

	dash, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TotalPasswords)

	exp, err := c.Export(ctx, []byte("passphrase"))
	require.NoError(t, err)
	assert.Equal(t, "http://s3.local/x.age", exp.URL)

	require.NoError(t, c.Delete(ctx, created.ID))
	assert.ErrorIs(t, c.Delete(ctx, created.ID), common.ErrorNotFound)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Session(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPClient_ValidationFields(t *testing.T) {
	ts := newServer(t)
	c := newClient(t, ts.URL)
	ctx := context.Background()

	_, err := c.Register(ctx, "bob@example.com", []byte("pw"), "")
	require.NoError(t, err)
	_, err = c.Login(ctx, "bob@example.com", []byte("pw"))
	require.NoError(t, err)

	_, err = c.Create(ctx, models.CredentialInput{Title: "only title"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)

	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"username", "password"}, verr.Fields)

	_, err = c.Export(ctx, nil)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = c.Update(ctx, "", models.CredentialPatch{})
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.ErrorIs(t, c.Delete(ctx, ""), common.ErrorValidation)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := newClient(t, url)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusGatewayTimeout, ErrUnavailable},
		{http.StatusUnauthorized, ErrUnauthorized},
	}

	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := newClient(t, ts.URL)
		err := c.Ping(context.Background())
		ts.Close()
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer ts.Close()

	err := newClient(t, ts.URL).Ping(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "internal error", apiErr.Message)
}

func TestHTTPClient_LogoutForgetsTokenOnServerError(t *testing.T) {
	var gotAuth []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	c.setToken("tok")

	require.NoError(t, c.Logout(context.Background()))
	_, _ = c.Session(context.Background())

	require.Len(t, gotAuth, 2)
	assert.Equal(t, "Bearer tok", gotAuth[0])
	assert.Empty(t, gotAuth[1])
}
