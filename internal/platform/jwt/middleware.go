// Package jwtmw verifies HS256 bearer tokens issued for the chart API and
// exposes the requesting user ID to handlers.
package jwtmw

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextUserID is the gin context key holding the authenticated user ID (uint).
	ContextUserID = "userID"
	// EnvKeyJWTSecret is the environment variable holding the HMAC secret.
	EnvKeyJWTSecret = "JWT_SECRET"
)

var (
	errMissingBearer = errors.New("missing bearer token")
	errInvalidToken  = errors.New("invalid token")
)

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			// Server misconfiguration (JWT_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}
		userID, err := authenticate(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if userID != 0 {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

// OptionalAuth sets the user ID when a valid bearer token is present and
// lets anonymous requests through. A present but invalid token is rejected.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		secret := os.Getenv(EnvKeyJWTSecret)
		if header == "" || secret == "" {
			c.Next()
			return
		}
		userID, err := authenticate(header, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if userID != 0 {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

// authenticate verifies the Authorization header and returns the "sub" claim.
func authenticate(header, secret string) (uint, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, errMissingBearer
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if sub, ok := claims["sub"].(float64); ok && sub > 0 { // JWT numbers are decoded as float64
			return uint(sub), nil
		}
	}
	return 0, nil
}
