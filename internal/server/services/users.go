package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/auth"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
)

// dummyPassword is hashed once at startup so that logins for unknown
// accounts spend the same bcrypt time as real ones.
const dummyPassword = "passkeeper-timing-equalizer"

// UserService registers accounts and manages session tokens:
//   - Register: create a user with a bcrypt password hash
//   - Authenticate: verify email/password and issue a session token
//   - VerifySession: resolve a token into an Identity
//   - InvalidateSession: revoke a token before it expires
type UserService struct {
	store           *repomanager.Store
	hasher          auth.Hasher
	jwtSecret       []byte
	sessionValidity time.Duration
	queryTimeout    time.Duration
	dummyHash       string
	now             func() time.Time
}

// NewUserService constructs a UserService. It hashes a dummy password
// up front, which takes one bcrypt round.
func NewUserService(store *repomanager.Store, hasher auth.Hasher, cfg *config.Config) (*UserService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}
	return &UserService{
		store:           store,
		hasher:          hasher,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
		queryTimeout:    cfg.QueryTimeout,
		dummyHash:       dummy,
		now:             time.Now,
	}, nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, password string) error {
	var fields []string
	if email == "" || !strings.Contains(email, "@") {
		fields = append(fields, "email")
	}
	if password == "" {
		fields = append(fields, "password")
	}
	if len(fields) > 0 {
		return common.NewValidationError("missing or invalid fields", fields...)
	}
	if len(password) > common.MaxPasswordBytes {
		return common.NewValidationError("password must be at most 72 bytes", "password")
	}
	return nil
}

// Register creates an account. The email is normalized before the
// uniqueness check; a taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validateRegistration(email, password); err != nil {
		return nil, err
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	repo := s.store.Repos.Users(s.store.DB)

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, internalError("error looking up user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internalError("error hashing password", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, Name: name, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, internalError("error creating user", err)
	}

	return user, nil
}

// Authenticate checks email/password and issues a session. Every failure
// that depends on the account (absent, no password, mismatch) returns the
// bare common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.Session, error) {
	email = NormalizeEmail(email)

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.store.Repos.Users(s.store.DB).GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, internalError("error looking up user", err)
	}

	if user == nil || user.PasswordHash == "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
		return nil, common.ErrorUnauthorized
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, internalError("error verifying password", err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	token, claims, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, internalError("error signing token", err)
	}

	return &models.Session{
		Token: token,
		Identity: models.Identity{
			UserID:    user.ID,
			Email:     user.Email,
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	}, nil
}

// VerifySession resolves token into the Identity it was issued for. Failures
// wrap common.ErrorUnauthorized together with the concrete reason.
func (s *UserService) VerifySession(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, unauthorized(common.ErrInvalidToken)
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return models.Identity{}, unauthorized(err)
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	revoked, err := s.store.Repos.RevokedTokens(s.store.DB).Exists(ctx, claims.ID)
	if err != nil {
		return models.Identity{}, internalError("error checking token revocation", err)
	}
	if revoked {
		return models.Identity{}, unauthorized(common.ErrTokenRevoked)
	}

	return models.Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// InvalidateSession revokes the identity's token until it expires.
func (s *UserService) InvalidateSession(ctx context.Context, id models.Identity) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if id.TokenID == "" {
		return unauthorized(common.ErrInvalidToken)
	}

	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	err := s.store.Repos.RevokedTokens(s.store.DB).Create(ctx, &models.RevokedToken{
		TokenID:   id.TokenID,
		UserID:    id.UserID,
		ExpiresAt: id.ExpiresAt,
		RevokedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return unauthorized(common.ErrInvalidToken)
		}
		return internalError("error revoking token", err)
	}
	return nil
}

// PurgeRevoked drops revocations whose tokens have expired by now.
func (s *UserService) PurgeRevoked(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := dbx.Bounded(ctx, s.queryTimeout)
	defer cancel()

	n, err := s.store.Repos.RevokedTokens(s.store.DB).DeleteExpired(ctx, now)
	if err != nil {
		return 0, internalError("error purging revoked tokens", err)
	}
	return n, nil
}
