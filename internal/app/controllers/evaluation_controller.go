package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/taluation/internal/app/auth"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/app/services"
	"github.com/yigit/taluation/internal/middleware"
)

// EvaluationController handles evaluation endpoints
type EvaluationController struct {
	evaluationService *services.EvaluationService
	authz             *appauth.AuthorizationService
}

// NewEvaluationController creates a new EvaluationController
func NewEvaluationController(evaluationService *services.EvaluationService, authz *appauth.AuthorizationService) *EvaluationController {
	return &EvaluationController{
		evaluationService: evaluationService,
		authz:             authz,
	}
}

// Create records the caller's evaluation of a class
// @Summary Evaluate a class
// @Description Students only. The score is clamped into the configured range.
// @Tags evaluation
// @Accept json
// @Produce json
// @Param request body dto.CreateEvaluationRequest true "Evaluation (inside the data member)"
// @Success 200 {object} dto.Response{data=dto.RecordResponse}
// @Router /evaluation [put]
func (c *EvaluationController) Create(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.CreateEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	record, err := c.evaluationService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Evaluation created successfully.", record))
}

// Delete removes an evaluation
// @Summary Delete an evaluation
// @Tags evaluation
// @Accept json
// @Produce json
// @Param request body dto.IDRequest true "Evaluation id (inside the data member)"
// @Success 200 {object} dto.Response
// @Router /evaluation [delete]
func (c *EvaluationController) Delete(ctx *gin.Context) {
	actor, ok := currentAccount(ctx, c.authz)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.evaluationService.Delete(ctx.Request.Context(), actor, req.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Evaluation deleted successfully.", nil))
}

// Get looks evaluations up
// @Summary Get evaluations
// @Tags evaluation
// @Produce json
// @Param id query string false "Evaluation id"
// @Param cls query string false "Class id"
// @Param user query string false "Student username"
// @Success 200 {object} dto.Response
// @Router /evaluation [get]
func (c *EvaluationController) Get(ctx *gin.Context) {
	var query dto.EvaluationQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.evaluationService.Get(ctx.Request.Context(), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Evaluation found.", result))
}

// Stats aggregates evaluation scores
// @Summary Evaluation statistics
// @Tags evaluation
// @Produce json
// @Param cls query string false "Class id, all evaluations when empty"
// @Success 200 {object} dto.Response{data=dto.EvaluationStats}
// @Router /evaluation/stats [get]
func (c *EvaluationController) Stats(ctx *gin.Context) {
	var query dto.StatsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	stats, err := c.evaluationService.Stats(ctx.Request.Context(), query.ClassID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Evaluation statistics computed.", stats))
}
