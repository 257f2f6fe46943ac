// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"steward/internal/config"
	"steward/internal/services"
	"steward/internal/store"
)

// Claims carries the identity embedded in an access token.
type Claims struct {
	Username string     `json:"username"`
	Role     store.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsHubMaster reports whether the token grants admin rights.
func (c *Claims) IsHubMaster() bool { return c.Role == store.RoleHubMaster }

// Authenticator signs and verifies HMAC access tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New builds an Authenticator from configuration.
func New(cfg *config.Config) *Authenticator {
	ttl := time.Duration(cfg.Server.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Authenticator{
		secret: []byte(cfg.Server.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueToken signs an access token for an account.
func (a *Authenticator) IssueToken(user *store.User) (string, error) {
	now := a.now().UTC()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "auth", "issue token", "failed to sign token", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a signed token.
func (a *Authenticator) VerifyToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, services.Wrap(services.ErrUnauthorized, "auth", "verify token", "invalid or expired token", err)
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}

// HashPassword produces a bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "auth", "hash password", "failed to hash password", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether a plaintext password matches a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
