package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/app/services"
	"github.com/yigit/taluation/internal/middleware"
)

// AccountController handles account and session endpoints
type AccountController struct {
	authService    *services.AuthService
	accountService *services.AccountService
	authz          *appauth.AuthorizationService
	logger         zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(
	authService *services.AuthService,
	accountService *services.AccountService,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *AccountController {
	return &AccountController{
		authService:    authService,
		accountService: accountService,
		authz:          authz,
		logger:         logger,
	}
}

// Register handles account registration
// @Summary Register a new account
// @Description Creates a student or teacher account. Admin accounts cannot be self-registered.
// @Tags account
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account information"
// @Success 200 {object} dto.Response{data=dto.RecordResponse}
// @Failure 400 {object} dto.Response "Invalid request format"
// @Router /account/register [post]
func (c *AccountController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	record, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Account created successfully.", record))
}

// Login handles login and token issuance
// @Summary Log in
// @Description Verifies the password and returns a new token; any previous token stops working.
// @Tags account
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.Response{data=dto.LoginResponse}
// @Router /account/login [post]
func (c *AccountController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Login successful.", resp))
}

// Logout invalidates the caller's token
// @Summary Log out
// @Tags account
// @Produce json
// @Param username query string true "Username"
// @Param token query string true "Token"
// @Success 200 {object} dto.Response
// @Router /account/logout [get]
func (c *AccountController) Logout(ctx *gin.Context) {
	if err := c.authService.Logout(ctx.Request.Context()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Logout successful.", nil))
}

// Get returns an account profile
// @Summary Get an account
// @Description Owners and admins see the full profile, everyone else only id and username.
// @Tags account
// @Produce json
// @Param name query string false "Username, defaults to the caller"
// @Success 200 {object} dto.Response{data=dto.AccountResponse}
// @Router /account [get]
func (c *AccountController) Get(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var query dto.AccountQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	account, err := c.accountService.Get(ctx.Request.Context(), actor, query.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Account found.", account))
}

// List returns every account (admin only)
// @Summary List accounts
// @Tags account
// @Produce json
// @Success 200 {object} dto.Response{data=[]dto.AccountResponse}
// @Router /account/list [get]
func (c *AccountController) List(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	accounts, err := c.accountService.List(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Accounts retrieved successfully.", accounts))
}

// Update changes an account profile
// @Summary Update an account
// @Tags account
// @Accept json
// @Produce json
// @Param request body dto.UpdateAccountRequest true "Fields to change (inside the data member)"
// @Success 200 {object} dto.Response{data=dto.AccountResponse}
// @Router /account [patch]
func (c *AccountController) Update(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	account, err := c.accountService.Update(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Account updated successfully.", account))
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Tags account
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Old and new password (inside the data member)"
// @Success 200 {object} dto.Response
// @Router /account/change-password [post]
func (c *AccountController) ChangePassword(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), actor, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Password changed successfully.", nil))
}

// Delete removes an account with its classes and evaluations
// @Summary Delete an account
// @Tags account
// @Accept json
// @Produce json
// @Param request body dto.DeleteAccountRequest false "Username, defaults to the caller (inside the data member)"
// @Success 200 {object} dto.Response
// @Router /account [delete]
func (c *AccountController) Delete(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.DeleteAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.accountService.Delete(ctx.Request.Context(), actor, req.Username); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Account deleted successfully.", nil))
}
