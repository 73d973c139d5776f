// Package jwt implements the session token service with HS256-signed,
// time-limited JSON Web Tokens carrying the user id and role title.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature, expiry, or
// structural checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the custom claims embedded in a session token.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Config contains token signing configuration.
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
}

// Authenticator issues and verifies session tokens. It is stateless: a
// pure function of the secret, payload, and clock.
type Authenticator struct {
	secret   []byte
	duration time.Duration
}

// NewAuthenticator creates a new token authenticator.
func NewAuthenticator(cfg Config) *Authenticator {
	return &Authenticator{
		secret:   []byte(cfg.SecretKey),
		duration: cfg.TokenDuration,
	}
}

// Issue produces a signed token embedding the user id and role title.
func (a *Authenticator) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes a token and returns the embedded user id and role title.
func (a *Authenticator) Verify(tokenString string) (userID, role string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.UserID, claims.Role, nil
}
