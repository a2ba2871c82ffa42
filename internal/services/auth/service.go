// Package auth verifies bearer credentials presented over the WebSocket.
// Any verification failure (expired, malformed, bad signature) is treated
// uniformly as an authentication failure by callers.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/typerace-go/internal/dependencies/clock"
	"github.com/mcoot/typerace-go/internal/model"
)

// Claims is the identity extracted from a verified token
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service verifies HS256-signed bearer tokens against a shared secret
type Service struct {
	secret []byte
	clock  clock.Clock
}

// New creates a token verification service
func New(secret string, clk clock.Clock) *Service {
	return &Service{
		secret: []byte(secret),
		clock:  clk,
	}
}

// Verify parses and validates a token, returning the claims it carries
func (s *Service) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", model.ErrAuthFailed, err)
	}
	return claims, nil
}

// Sign issues a token for the given identity. Used by the CLI race client
// and tests; the production issuer is an external identity service sharing
// the same secret.
func (s *Service) Sign(subject, userID, username string, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
