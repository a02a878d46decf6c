package routes

import (
	"lifeline/controllers"
	"lifeline/middleware"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

// SetupAmbulanceRoutes configures the ambulance fleet routes.
func SetupAmbulanceRoutes(router *gin.RouterGroup, ambulanceController *controllers.AmbulanceController, auth *middleware.AuthMiddleware) {
	ambulances := router.Group("/ambulances")
	{
		ambulances.GET("/available", ambulanceController.ListAvailable)
		ambulances.GET("/:ambulanceId", ambulanceController.GetAmbulance)
	}

	// Fleet registration is an admin operation; drivers report their own
	// location and service status.
	ambulances.POST("", auth.RequireRole(utils.RoleAdmin), ambulanceController.RegisterAmbulance)

	driver := ambulances.Group("")
	driver.Use(auth.RequireRole(utils.RoleAmbulanceDriver))
	{
		driver.PUT("/:ambulanceId/location", ambulanceController.UpdateLocation)
		driver.PUT("/:ambulanceId/status", ambulanceController.UpdateStatus)
	}
}
