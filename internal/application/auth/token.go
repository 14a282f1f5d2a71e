// Package auth holds the client-side session rules: token expiry checks
// and inactivity tracking. Tokens are never verified cryptographically
// here; the config server does that on every request.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT without verifying its signature
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenValid reports whether token carries an exp claim later than now.
// Malformed tokens and tokens without exp are invalid.
func TokenValid(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && now.Before(exp)
}

// TokenEmail returns the email claim of a JWT, empty when absent
func TokenEmail(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// TokenFromHeader extracts the token from a "Bearer <token>" header value
func TokenFromHeader(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
