package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingSecret is returned when the issuer is built without a signing secret
var ErrMissingSecret = errors.New("token signing secret is required")

// TokenConfig defines token minting settings
type TokenConfig struct {
	SecretKey   string
	TokenIssuer string
}

// TokenIssuer mints opaque bearer tokens for logged-in accounts. Tokens are HS256-signed
// JWTs so their value is a one-way derivation of the username plus a random ID; clients
// and the auth gate treat them as opaque strings compared byte for byte against the store.
type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

// Claims defines the token content
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewTokenIssuer creates a new token issuer
func NewTokenIssuer(config TokenConfig) (*TokenIssuer, error) {
	if config.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	return &TokenIssuer{
		config: config,
		now:    time.Now,
	}, nil
}

// Issue mints a fresh token for username. Two calls for the same username never
// return the same token.
func (s *TokenIssuer) Issue(username string) (string, error) {
	now := s.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   s.config.TokenIssuer,
			Subject:  username,
			ID:       uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
