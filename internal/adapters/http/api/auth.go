package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevPrincipalHeader names the caller directly when local development auth is enabled.
const DevPrincipalHeader = "X-Local-Dev-Principal"

const tokenCookie = "jwt"

type callerKey struct{}

// WithCaller stores the authenticated caller id on ctx.
func WithCaller(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

// CallerFrom returns the authenticated caller id, or "" when unauthenticated.
func CallerFrom(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}

// Authenticator resolves the caller identity from an HS256 token.
type Authenticator struct {
	secret   []byte
	allowDev bool
	now      func() time.Time
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithDevPrincipal trusts the X-Local-Dev-Principal header. Never enable in production.
func WithDevPrincipal(allow bool) AuthOption {
	return func(a *Authenticator) { a.allowDev = allow }
}

// WithAuthClock overrides the time used to validate token expiry.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthenticator creates an Authenticator verifying tokens signed with secret.
func NewAuthenticator(secret string, opts ...AuthOption) *Authenticator {
	a := &Authenticator{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Middleware rejects unauthenticated requests with 401 and stores the caller
// id on the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Identify(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), id)))
	})
}

// Identify returns the caller id carried by r. The token is read from the
// Authorization or Authentication header ("Bearer <token>" or a bare token),
// then from the jwt cookie. The id comes from the "id" claim, else "sub".
func (a *Authenticator) Identify(r *http.Request) (string, error) {
	if a.allowDev {
		if p := strings.TrimSpace(r.Header.Get(DevPrincipalHeader)); p != "" {
			return p, nil
		}
	}
	raw := tokenFrom(r)
	if raw == "" {
		return "", ErrUnauthorized
	}
	if len(a.secret) == 0 {
		return "", fmt.Errorf("%w: no signing secret configured", ErrUnauthorized)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return "", fmt.Errorf("%w: token is not valid", ErrUnauthorized)
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
}

// Issue signs a token for subject valid for ttl. Used by tooling and tests.
func (a *Authenticator) Issue(subject string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("no signing secret configured")
	}
	now := a.now()
	claims := jwt.MapClaims{
		"id":  subject,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func tokenFrom(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		h = r.Header.Get("Authentication")
	}
	if fields := strings.Fields(h); len(fields) > 0 {
		return fields[len(fields)-1]
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}
