// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Aryam2121/CoalMine-B/internal/config"
)

const testSecret = "test-secret-0123456789-0123456789-xyz"

func newTestVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	v, err := NewJWTVerifier(&config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}
	return v
}

func TestNewJWTVerifierRejectsShortSecret(t *testing.T) {
	_, err := NewJWTVerifier(&config.SecurityConfig{JWTSecret: "short"})
	if err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	v := newTestVerifier(t)

	token, err := v.GenerateToken("miner-7", "supervisor")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UserID != "miner-7" || identity.Role != "supervisor" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestVerifyRejections(t *testing.T) {
	v := newTestVerifier(t)

	otherVerifier, err := NewJWTVerifier(&config.SecurityConfig{
		JWTSecret:      "another-secret-0123456789-0123456789",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	wrongSecret, err := otherVerifier.GenerateToken("miner-7", "miner")
	if err != nil {
		t.Fatal(err)
	}

	expiredClaims := &Claims{
		UserID: "miner-7",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: "miner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "miner-7"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", wrongSecret},
		{"expired", expired},
		{"missing user id", noUser},
		{"none algorithm", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); !errors.Is(err, ErrAuthentication) {
				t.Errorf("Verify(%s) err = %v, want ErrAuthentication", tt.name, err)
			}
		})
	}
}
