package jwt

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

type Service interface {
	GenerateAccessToken(userID string, email string, roles []string) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	ValidateRefreshToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	ClearRefreshTokenCookie() *http.Cookie
	RevokeToken(token string, expiresAt int64)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTTL    string
	refreshTTL   string
	secureCookie bool
	tokenAuth    *jwtauth.JWTAuth
	revoked      *denylist
	now          func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string, secureCookie bool) Service {
	return &JWTService{
		accessTTL:    accessTokenExpirationTime,
		refreshTTL:   refreshTokenExpirationTime,
		secureCookie: secureCookie,
		tokenAuth:    jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revoked:      &denylist{entries: make(map[[sha256.Size]byte]int64)},
		now:          time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// issue signs claims with an exp ttl from now.
func (j *JWTService) issue(ttl string, claims map[string]interface{}) (string, int64, error) {
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return "", 0, fmt.Errorf("invalid token lifetime %q: %w", ttl, err)
	}
	expiresAt := j.now().Add(d).Unix()
	claims["exp"] = expiresAt

	_, token, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return token, expiresAt, nil
}

func (j *JWTService) GenerateAccessToken(userID string, email string, roles []string) (string, int64, error) {
	if roles == nil {
		roles = []string{}
	}
	return j.issue(j.accessTTL, map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"roles":   roles,
		"type":    TokenTypeAccess,
	})
}

func (j *JWTService) GenerateRefreshToken(userID string) (string, int64, error) {
	return j.issue(j.refreshTTL, map[string]interface{}{
		"user_id": userID,
		"type":    TokenTypeRefresh,
		// two refresh tokens issued in the same second must still differ
		"iat_ns": j.now().UnixNano(),
	})
}

// ValidateRefreshToken checks signature, expiry and token type and returns the user ID
func (j *JWTService) ValidateRefreshToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	if tokenType, _ := token.Get("type"); tokenType != TokenTypeRefresh {
		return "", jwt.ErrInvalidJWT()
	}

	raw, _ := token.Get("user_id")
	userID, _ := raw.(string)
	if userID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return userID, nil
}

func (j *JWTService) refreshCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	c := j.refreshCookie(token)
	c.Expires = time.Unix(expiresAt, 0)
	return c
}

func (j *JWTService) ClearRefreshTokenCookie() *http.Cookie {
	c := j.refreshCookie("")
	c.MaxAge = -1
	return c
}

// RevokeToken denylists an access token until it would have expired anyway.
// A non-positive expiresAt keeps the entry for a day.
func (j *JWTService) RevokeToken(token string, expiresAt int64) {
	now := j.now().Unix()
	if expiresAt <= 0 {
		expiresAt = now + int64((24 * time.Hour).Seconds())
	}
	j.revoked.add(token, expiresAt, now)
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	return j.revoked.contains(token, j.now().Unix())
}

// denylist holds token digests with the unix time they stop mattering.
type denylist struct {
	mu      sync.RWMutex
	entries map[[sha256.Size]byte]int64
}

func (d *denylist) add(token string, expiresAt, now int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, exp := range d.entries {
		if exp <= now {
			delete(d.entries, key)
		}
	}
	d.entries[sha256.Sum256([]byte(token))] = expiresAt
}

func (d *denylist) contains(token string, now int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	exp, ok := d.entries[sha256.Sum256([]byte(token))]
	return ok && exp > now
}
