package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models/dto"
)

// Auth gate failure details
const (
	DetailMissingCredentials = "Missing authentication credentials"
	DetailInvalidCredentials = "Invalid authentication credentials"
	DetailMalformedBody      = "Malformed request body"
	DetailAuthUnavailable    = "Authentication backend unavailable"
)

// IdentityKey is the gin context key holding the validated appauth.Identity
const IdentityKey = "identity"

// TokenValidator checks a (username, token) pair against the credential store
type TokenValidator interface {
	ValidateToken(ctx context.Context, username, token string) (bool, error)
}

// AuthMiddleware is the auth gate placed in front of every route
type AuthMiddleware struct {
	validator     TokenValidator
	excludedPaths []string
	logger        zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. Requests whose path starts with
// one of excludedPaths pass through unauthenticated.
func NewAuthMiddleware(validator TokenValidator, excludedPaths []string, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator:     validator,
		excludedPaths: excludedPaths,
		logger:        logger,
	}
}

// isExcluded reports whether path bypasses authentication
func (m *AuthMiddleware) isExcluded(path string) bool {
	for _, prefix := range m.excludedPaths {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isRead reports whether the method carries its credentials in the query string
func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// Gate validates the caller's (username, token) pair. Reads carry it as query
// parameters; writes carry it in the "auth" member of a JSON envelope whose "data"
// member becomes the request body seen by the handler.
func (m *AuthMiddleware) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isExcluded(c.Request.URL.Path) {
			c.Next()
			return
		}

		var (
			creds   dto.AuthCredentials
			payload []byte
		)

		if isRead(c.Request.Method) {
			creds.Username = c.Query("username")
			creds.Token = c.Query("token")
			if creds.Username == "" || creds.Token == "" {
				m.reject(c, http.StatusUnauthorized, DetailMissingCredentials)
				return
			}
		} else {
			var status int
			var detail string
			creds, payload, status, detail = parseEnvelope(c.Request.Body)
			if status != 0 {
				m.reject(c, status, detail)
				return
			}
		}

		ok, err := m.validator.ValidateToken(c.Request.Context(), creds.Username, creds.Token)
		if err != nil {
			m.logger.Error().Err(err).Str("username", creds.Username).Msg("Token validation failed")
			m.reject(c, http.StatusInternalServerError, DetailAuthUnavailable)
			return
		}
		if !ok {
			m.reject(c, http.StatusUnauthorized, DetailInvalidCredentials)
			return
		}

		identity := appauth.Identity{Username: creds.Username, Token: creds.Token}
		c.Request = c.Request.WithContext(appauth.WithIdentity(c.Request.Context(), identity))
		c.Set(IdentityKey, identity)

		if payload != nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(payload))
			c.Request.ContentLength = int64(len(payload))
		}

		c.Next()
	}
}

// parseEnvelope reads a write request body in two stages: first as a JSON object
// (failure is a malformed body), then its "auth" member as credentials (failure
// is missing credentials). A non-zero status means the request must be rejected.
func parseEnvelope(body io.Reader) (dto.AuthCredentials, []byte, int, string) {
	var creds dto.AuthCredentials

	if body == nil {
		return creds, nil, http.StatusUnauthorized, DetailMissingCredentials
	}
	raw, err := io.ReadAll(body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return creds, nil, http.StatusUnauthorized, DetailMissingCredentials
	}

	var envelope dto.AuthEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return creds, nil, http.StatusBadRequest, DetailMalformedBody
	}

	if isNull(envelope.Auth) {
		return creds, nil, http.StatusUnauthorized, DetailMissingCredentials
	}
	if err := json.Unmarshal(envelope.Auth, &creds); err != nil {
		return creds, nil, http.StatusUnauthorized, DetailMissingCredentials
	}
	if err := binding.Validator.ValidateStruct(&creds); err != nil {
		return creds, nil, http.StatusUnauthorized, DetailMissingCredentials
	}

	payload := []byte("{}")
	if !isNull(envelope.Data) {
		payload = envelope.Data
	}
	return creds, payload, 0, ""
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (m *AuthMiddleware) reject(c *gin.Context, status int, detail string) {
	m.logger.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Str("detail", detail).
		Msg("Request rejected by auth gate")
	c.AbortWithStatusJSON(status, dto.AuthFailure{Detail: detail})
}
