package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const identityKey ctxKey = "identity"

func withIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller bound by the authentication middleware.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok && !id.IsZero()
}

// tokensFromRequest returns the session cookie followed by the bearer
// Authorization header, skipping whichever is absent.
func tokensFromRequest(r *http.Request) []string {
	var tokens []string
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}

	h := r.Header.Get(common.AuthorizationHeaderName)
	prefix := common.BearerScheme + " "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		if t := strings.TrimSpace(h[len(prefix):]); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// authenticate binds the caller's Identity. The cookie is tried first; a
// stale or revoked cookie does not shadow a valid bearer header.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens := tokensFromRequest(r)
		if len(tokens) == 0 {
			s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var lastErr error
		for _, token := range tokens {
			id, err := s.users.VerifySession(r.Context(), token)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
				return
			}
			lastErr = err
			if !errors.Is(err, common.ErrorUnauthorized) {
				break
			}
		}
		s.writeError(w, r, lastErr)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
