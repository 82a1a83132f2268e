package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(TokenConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenIssuer_IssueIsUniquePerCall(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenConfig{SecretKey: "test-secret", TokenIssuer: "taluation.test"})
	require.NoError(t, err)

	first, err := issuer.Issue("alice")
	require.NoError(t, err)
	second, err := issuer.Issue("alice")
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second, "tokens must not be derivable from the username alone")
}

func TestTokenIssuer_ClaimsCarryUsername(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenConfig{SecretKey: "test-secret", TokenIssuer: "taluation.test"})
	require.NoError(t, err)

	token, err := issuer.Issue("bob")
	require.NoError(t, err)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "bob", claims.Username)
	assert.Equal(t, "bob", claims.Subject)
	assert.Equal(t, "taluation.test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}
