// Package controllers handles HTTP request handling
package controllers

import (
	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models"
	"github.com/yigit/taluation/internal/middleware"
)

// currentAccount resolves the account behind the request's identity. On failure the
// response has already been written and ok is false.
func currentAccount(ctx *gin.Context, authz *appauth.AuthorizationService) (account *models.Account, ok bool) {
	account, err := authz.CurrentAccount(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	return account, true
}
