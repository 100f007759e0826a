package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "auth-token"

// AuthorizationHeaderName and BearerScheme describe the header fallback for
// API clients that do not keep cookies.
const (
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72
