package routes

import (
	"lifeline/controllers"
	"lifeline/middleware"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

// SetupBloodRoutes configures the blood request and blood bank routes.
func SetupBloodRoutes(router *gin.RouterGroup, bloodController *controllers.BloodController, auth *middleware.AuthMiddleware) {
	blood := router.Group("/blood")
	{
		blood.POST("/requests", bloodController.CreateRequest)
		blood.GET("/requests/history", bloodController.GetHistory)
		blood.GET("/requests/:requestId", bloodController.GetRequest)
		blood.POST("/requests/:requestId/match", bloodController.Rematch)
		blood.POST("/requests/:requestId/fulfill", bloodController.FulfillRequest)
		blood.POST("/requests/:requestId/cancel", bloodController.CancelRequest)

		blood.GET("/banks/:bankId", bloodController.GetBank)
	}

	blood.PUT("/banks/:bankId/stock", auth.RequireRole(utils.RoleHospitalAdmin), bloodController.UpdateStock)
}
