// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package auth verifies bearer credentials for the realtime gateway.
// Token issuance lives in the user-management service; this package only
// consumes its contract: verify(token) -> identity or reject.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Aryam2121/CoalMine-B/internal/config"
)

// ErrAuthentication is returned for any bad, missing, or expired credential.
// Callers must not distinguish failure modes on the wire.
var ErrAuthentication = errors.New("authentication error")

// Identity is the verified caller identity attached to a connection.
type Identity struct {
	UserID string
	Role   string
}

// Claims represents the JWT claims issued by the user-management service.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens. Implemented by *JWTVerifier; the
// gateway depends on the interface so tests can substitute a fake.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// JWTVerifier validates HS256-signed JWT tokens.
type JWTVerifier struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTVerifier creates a verifier with the configured secret.
//
// The secret must be at least 32 characters; config.Validate enforces this
// before the verifier is constructed, but the check is repeated here so the
// package is safe to use standalone.
func NewJWTVerifier(cfg *config.SecurityConfig) (*JWTVerifier, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	return &JWTVerifier{
		secret:  []byte(cfg.JWTSecret),
		timeout: cfg.SessionTimeout,
	}, nil
}

// Verify validates a token and extracts the caller identity.
//
// Rejects tokens signed with anything other than HMAC, expired tokens, and
// tokens whose claims lack a user id. All failures collapse into
// ErrAuthentication.
func (v *JWTVerifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrAuthentication
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Identity{}, ErrAuthentication
	}

	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// GenerateToken creates a signed token for an identity. The production
// token issuer is external; this is used by integration tests and local
// tooling to mint valid credentials.
func (v *JWTVerifier) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
