// internal/app/system/auth/auth.go

// Package auth implements bearer-token authentication for the API. Login
// verifies a bcrypt password hash and issues a time-limited JWT signed with
// HMAC-SHA-256; the middleware verifies the token on every protected request
// and re-fetches the account so that disable, suspend, and role changes take
// effect immediately rather than at token expiry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for new password hashes.
const BcryptCost = 12

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the authenticated account placed in context by the
// middleware, and a found flag.
func CurrentAdmin(r *http.Request) (*models.AdminUser, bool) {
	a, ok := r.Context().Value(currentAdminKey).(*models.AdminUser)
	return a, ok
}

// WithAdmin injects an account into the request context. Used by the
// middleware after verification, and by handler tests to bypass it.
func WithAdmin(r *http.Request, a *models.AdminUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, a))
}

// Fetcher loads a fresh account by its hex id on each request.
type Fetcher interface {
	FetchAdmin(ctx context.Context, idHex string) (*models.AdminUser, error)
}

// Claims is the JWT payload. Role travels in the token for cheap logging;
// authorization decisions always use the freshly fetched account.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the portal's bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens builds a token manager.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥32 random chars")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token for the account.
func (t *Tokens) Issue(a *models.AdminUser) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.ttl)
	claims := Claims{
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.Hex(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates a token string.
func (t *Tokens) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ReadBearer extracts the token from the authorization header, or "".
func ReadBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// HashPassword hashes a password at the portal's cost factor.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(b), err
}

// CheckPassword compares a stored hash against a candidate password.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Middleware verifies bearer tokens and loads the fresh account into
// context.
type Middleware struct {
	tokens  *Tokens
	fetcher Fetcher
	log     *zap.Logger
}

// NewMiddleware builds the auth middleware.
func NewMiddleware(tokens *Tokens, fetcher Fetcher, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, fetcher: fetcher, log: logger}
}

// RequireAuth rejects requests without a valid token or with a token whose
// account is missing, disabled, or still suspended. A suspension whose
// expiry has passed is treated as active here; the login handler clears the
// stored expiry on its next pass.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ReadBearer(r)
		if token == "" {
			respond.Err(w, m.log, apperr.Auth("missing bearer token"))
			return
		}
		claims, err := m.tokens.Verify(token)
		if err != nil {
			respond.Err(w, m.log, apperr.Auth("invalid or expired token"))
			return
		}

		admin, err := m.fetcher.FetchAdmin(r.Context(), claims.Subject)
		if err != nil {
			respond.Err(w, m.log, apperr.Auth("account not found"))
			return
		}
		if err := AccountUsable(admin, time.Now()); err != nil {
			respond.Err(w, m.log, err)
			return
		}

		next.ServeHTTP(w, WithAdmin(r, admin))
	})
}

// RequireRole allows only the listed roles through. Mount inside
// RequireAuth.
func (m *Middleware) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := CurrentAdmin(r)
			if !ok {
				respond.Err(w, m.log, apperr.Auth("not authenticated"))
				return
			}
			if _, has := set[strings.ToLower(admin.Role)]; !has {
				respond.Err(w, m.log, apperr.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates a subtree on a per-account permission check.
func (m *Middleware) RequirePermission(check func(*models.AdminUser) bool, what string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := CurrentAdmin(r)
			if !ok {
				respond.Err(w, m.log, apperr.Auth("not authenticated"))
				return
			}
			if !check(admin) {
				respond.Err(w, m.log, apperr.Forbidden("missing permission: "+what))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccountUsable reports whether the account may authenticate right now.
// Disabled accounts are rejected outright. A suspended account is rejected
// with the resume timestamp until the expiry passes; after that it counts as
// active again even if the stored field has not been cleared yet.
func AccountUsable(a *models.AdminUser, now time.Time) error {
	if a.Status == models.AdminDisabled {
		return apperr.Auth("account disabled")
	}
	if a.SuspendedUntil != nil && now.Before(*a.SuspendedUntil) {
		return apperr.Suspended(*a.SuspendedUntil)
	}
	return nil
}
