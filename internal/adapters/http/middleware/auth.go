package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// Cookie names
const (
	AccessCookieName  = "mydaylog_access"
	RefreshCookieName = "mydaylog_refresh"
)

// refreshCookiePath limits the refresh cookie to the auth endpoints.
const refreshCookiePath = "/auth"

const tokenIssuer = "mydaylog"

// ErrInvalidToken is returned for a missing, malformed, forged or expired access token.
var ErrInvalidToken = errors.New("invalid access token")

// Session represents an authenticated request, decoded from the access token.
type Session struct {
	AccountID string
	Email     string
	Guest     bool
	ExpiresAt time.Time
}

// Claims is the payload of an access token.
type Claims struct {
	Email string `json:"email"`
	Guest bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer.
// PRE: secret is non-empty; ttl > 0
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of t that reads time from now. Used by tests.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	c := *t
	c.now = now
	return &c
}

// Issue signs an access token for the account.
// POST: returns the token and its expiry
func (t *Tokens) Issue(accountID, email string, guest bool) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Guest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns the session it carries.
// PRE: none
// POST: returns ErrInvalidToken unless the token is well formed, signed with
// our secret and unexpired
func (t *Tokens) Parse(raw string) (Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{
		AccountID: claims.Subject,
		Email:     claims.Email,
		Guest:     claims.Guest,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Auth returns middleware that reads the access cookie and sets the session in context.
// It does NOT block unauthenticated requests; use RequireAuth for that.
func Auth(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
				if session, err := tokens.Parse(cookie.Value); err == nil {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that answers 401 for unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetAuthCookies writes the access and refresh cookies.
func SetAuthCookies(w http.ResponseWriter, access string, accessExp time.Time, refresh string, refreshExp time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    access,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  accessExp,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refresh,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     refreshCookiePath,
		Expires:  refreshExp,
	})
}

// ClearAuthCookies expires both auth cookies.
func ClearAuthCookies(w http.ResponseWriter, secure bool) {
	for name, path := range map[string]string{AccessCookieName: "/", RefreshCookieName: refreshCookiePath} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Path:     path,
			MaxAge:   -1,
		})
	}
}

// RefreshToken returns the raw refresh cookie value, "" when absent.
func RefreshToken(r *http.Request) string {
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		return c.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
