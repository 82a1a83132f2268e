package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/app/services"
	"github.com/yigit/taluation/internal/middleware"
)

// ClassController handles class endpoints
type ClassController struct {
	classService *services.ClassService
	authz        *appauth.AuthorizationService
}

// NewClassController creates a new ClassController
func NewClassController(classService *services.ClassService, authz *appauth.AuthorizationService) *ClassController {
	return &ClassController{
		classService: classService,
		authz:        authz,
	}
}

// Create adds a class
// @Summary Create a class
// @Description Teachers create classes they own; admins may name the owning teacher.
// @Tags class
// @Accept json
// @Produce json
// @Param request body dto.CreateClassRequest true "Class (inside the data member)"
// @Success 200 {object} dto.Response{data=dto.RecordResponse}
// @Router /class [put]
func (c *ClassController) Create(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	record, err := c.classService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Class created successfully.", record))
}

// Update changes a class
// @Summary Update a class
// @Tags class
// @Accept json
// @Produce json
// @Param request body dto.UpdateClassRequest true "Fields to change (inside the data member)"
// @Success 200 {object} dto.Response{data=models.Class}
// @Router /class [patch]
func (c *ClassController) Update(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	class, err := c.classService.Update(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Class updated successfully.", class))
}

// Delete removes a class and its evaluations
// @Summary Delete a class
// @Tags class
// @Accept json
// @Produce json
// @Param request body dto.IDRequest true "Class id (inside the data member)"
// @Success 200 {object} dto.Response
// @Router /class [delete]
func (c *ClassController) Delete(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.classService.Delete(ctx.Request.Context(), actor, req.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Class deleted successfully.", nil))
}

// Get looks classes up
// @Summary Get classes
// @Description By id or name returns one class; by teacher, or with no filter, a list.
// @Tags class
// @Produce json
// @Param id query string false "Class id"
// @Param cls query string false "Class name"
// @Param teacher query string false "Teacher username"
// @Success 200 {object} dto.Response
// @Router /class [get]
func (c *ClassController) Get(ctx *gin.Context) {
	var query dto.ClassQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.classService.Get(ctx.Request.Context(), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Class retrieved successfully.", result))
}
