package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Admin sessions =====

var (
	errNoToken  = errors.New("missing session token")
	errBadToken = errors.New("invalid session token")
)

// AdminClaims is the payload of an admin session token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthManager mints and verifies short-lived HS256 admin sessions. Tokens
// travel either as a bearer header or as an HttpOnly cookie; both carry the
// same JWT.
type AuthManager struct {
	secret     []byte
	cookieName string
	secure     bool
	ttl        time.Duration
}

func NewAuthManager(secret string, secure bool, ttl time.Duration) *AuthManager {
	return &AuthManager{
		secret:     []byte(secret),
		cookieName: "admin_session",
		secure:     secure, // true in prod (TLS)
		ttl:        ttl,
	}
}

func (a *AuthManager) Mint(w http.ResponseWriter) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, a.sessionCookie(signed, int(a.ttl.Seconds())))
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, a.sessionCookie("", -1))
}

func (a *AuthManager) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ParseFromRequest prefers the Authorization header and falls back to the
// session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*AdminClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	if c, err := r.Cookie(a.cookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, errNoToken
}

func (a *AuthManager) parse(tok string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims,
		func(t *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return nil, errBadToken
	}
	return claims, nil
}
