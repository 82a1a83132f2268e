package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/yigit/taluation/internal/app/models/dto"
	"github.com/yigit/taluation/internal/db"
)

// HealthController reports whether the database behind the API is reachable
type HealthController struct {
	db *sqlx.DB
}

// NewHealthController creates a new HealthController
func NewHealthController(database *sqlx.DB) *HealthController {
	return &HealthController{db: database}
}

// Health reports service and database status. The service keeps serving while the
// database is down, so this answers 200 either way and says which it is.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.Response
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	status := "up"
	if err := db.Ping(ctx.Request.Context(), c.db); err != nil {
		status = "down"
	}

	ctx.JSON(http.StatusOK, dto.Response{
		Message: "Service is running.",
		Data:    gin.H{"database": status},
		Success: status == "up",
	})
}
