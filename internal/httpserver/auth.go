// internal/httpserver/auth.go
//
// Moderation console authentication.
// A single configured credential pair guards /api/admin/*. The password is
// bcrypt-hashed once at startup and never kept in plain text afterwards.
// A successful login issues an HS256 JWT, delivered both as an HttpOnly cookie
// and in the response body for bearer use.

package httpserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nicorema/wedding/internal/config"
)

var errBadCredentials = errors.New("invalid username or password")

const adminRole = "admin"

// adminClaims is the token payload.
type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// adminAuth verifies credentials and issues/validates tokens.
type adminAuth struct {
	username   string
	hash       []byte
	secret     []byte
	expiry     time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

func newAdminAuth(cfg config.AdminConfig, secure bool, now func() time.Time) (*adminAuth, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &adminAuth{
		username:   cfg.Username,
		hash:       h,
		secret:     []byte(cfg.JWTSecret),
		expiry:     cfg.JWTExpiry,
		cookieName: cfg.CookieName,
		secure:     secure,
		now:        now,
	}, nil
}

// check compares the submitted pair against the configured one.
func (a *adminAuth) check(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(a.username)) == 1
	pwErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || pwErr != nil {
		return errBadCredentials
	}
	return nil
}

// sign creates an HS256 token for the admin user.
func (a *adminAuth) sign() (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.expiry)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(a.secret)
	return ss, exp, err
}

// verify parses and validates a token string.
func (a *adminAuth) verify(tokenStr string) (*adminClaims, error) {
	claims := &adminClaims{}
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	token, err := p.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Role != adminRole || claims.Subject != a.username {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ------------------------------ cookies ------------------------------------

func (a *adminAuth) sameSite() http.SameSite {
	if a.secure {
		return http.SameSiteNoneMode // required for cross-site cookies when Secure
	}
	return http.SameSiteLaxMode
}

// setCookie writes the auth token cookie with appropriate security attributes.
func (a *adminAuth) setCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: a.sameSite(),
		Expires:  exp,
	})
}

// clearCookie deletes the auth token cookie.
func (a *adminAuth) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: a.sameSite(),
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (a *adminAuth) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if h := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(a.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// ctxAdminKey is the context key type for storing the admin claims.
type ctxAdminKey struct{}

// requireAdmin enforces a valid admin JWT and injects its claims into the
// request context.
func (a *adminAuth) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := a.bearerOrCookie(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := a.verify(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxAdminKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentAdmin returns the admin claims placed by requireAdmin.
func currentAdmin(r *http.Request) *adminClaims {
	c, _ := r.Context().Value(ctxAdminKey{}).(*adminClaims)
	return c
}
