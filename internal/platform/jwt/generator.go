package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Generator signs access tokens for API clients.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given user.
	GenerateToken(userID uint) (string, error)
}

// HS256Generator signs tokens with a shared HMAC secret.
type HS256Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

var _ Generator = (*HS256Generator)(nil)

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *HS256Generator {
	return &HS256Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed HS256 token with sub, iat and exp claims.
func (g *HS256Generator) GenerateToken(userID uint) (string, error) {
	if len(g.secret) == 0 {
		return "", fmt.Errorf("failed to sign token: empty secret")
	}
	now := g.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(g.expiration).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
