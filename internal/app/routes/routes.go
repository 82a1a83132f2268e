package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/taluation/internal/app/controllers"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Account    *controllers.AccountController
	Class      *controllers.ClassController
	Evaluation *controllers.EvaluationController
	Health     *controllers.HealthController
}

// SetupRouter configures all application routes under apiPrefix. Authentication is
// applied globally by the auth gate, so routes here carry no auth middleware.
func SetupRouter(router *gin.Engine, apiPrefix string, ctrl Controllers) {
	// Liveness probe
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	api := router.Group(apiPrefix)

	api.GET("/health", ctrl.Health.Health)

	account := api.Group("/account")
	{
		account.POST("/register", ctrl.Account.Register)
		account.POST("/login", ctrl.Account.Login)
		account.GET("/logout", ctrl.Account.Logout)
		account.GET("/list", ctrl.Account.List)
		account.POST("/change-password", ctrl.Account.ChangePassword)
		account.GET("", ctrl.Account.Get)
		account.PATCH("", ctrl.Account.Update)
		account.DELETE("", ctrl.Account.Delete)
	}

	class := api.Group("/class")
	{
		class.GET("", ctrl.Class.Get)
		class.PUT("", ctrl.Class.Create)
		class.PATCH("", ctrl.Class.Update)
		class.DELETE("", ctrl.Class.Delete)
	}

	evaluation := api.Group("/evaluation")
	{
		evaluation.GET("", ctrl.Evaluation.Get)
		evaluation.GET("/stats", ctrl.Evaluation.Stats)
		evaluation.PUT("", ctrl.Evaluation.Create)
		evaluation.DELETE("", ctrl.Evaluation.Delete)
	}
}
