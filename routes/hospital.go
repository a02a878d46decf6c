package routes

import (
	"lifeline/controllers"
	"lifeline/middleware"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

// SetupHospitalRoutes configures the hospital registry routes.
func SetupHospitalRoutes(router *gin.RouterGroup, hospitalController *controllers.HospitalController, auth *middleware.AuthMiddleware) {
	hospitals := router.Group("/hospitals")
	{
		hospitals.GET("/nearby", hospitalController.Nearby)
		hospitals.GET("/:hospitalId", hospitalController.GetHospital)
	}

	hospitals.POST("", auth.RequireRole(utils.RoleAdmin), hospitalController.RegisterHospital)
	hospitals.PUT("/:hospitalId/beds", auth.RequireRole(utils.RoleHospitalAdmin), hospitalController.UpdateBeds)
}
