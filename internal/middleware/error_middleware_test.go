package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/pkg/apperrors"
)

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized, MessageUnauthorized},
		{"not found", apperrors.ErrClassNotFound, http.StatusOK, "Class not found."},
		{"wrapped conflict", fmt.Errorf("create: %w", apperrors.ErrAccountAlreadyExists), http.StatusOK, "Account already exists."},
		{"forbidden", apperrors.NewForbiddenError("Nope."), http.StatusOK, "Nope."},
		{"validation", apperrors.NewValidationError("Password too short."), http.StatusOK, "Password too short."},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, MessageInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}
