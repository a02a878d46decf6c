package routes

import (
	"lifeline/controllers"
	"lifeline/middleware"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

// SetupEmergencyRoutes configures the emergency lifecycle routes. Milestone
// updates are restricted to ambulance drivers; everything else is available
// to any authenticated user.
func SetupEmergencyRoutes(router *gin.RouterGroup, emergencyController *controllers.EmergencyController, auth *middleware.AuthMiddleware) {
	emergency := router.Group("/emergency")
	{
		emergency.POST("/trigger", emergencyController.TriggerEmergency)
		emergency.GET("/history", emergencyController.GetHistory)
		emergency.GET("/active", emergencyController.ListActive)
		emergency.GET("/:emergencyId", emergencyController.GetEmergency)
		emergency.POST("/:emergencyId/assign", emergencyController.AssignAmbulance)
		emergency.POST("/:emergencyId/cancel", emergencyController.CancelEmergency)
	}

	// Ride milestones reported by the assigned driver
	milestones := emergency.Group("")
	milestones.Use(auth.RequireRole(utils.RoleAmbulanceDriver))
	{
		milestones.POST("/:emergencyId/en-route", emergencyController.MarkEnRoute)
		milestones.POST("/:emergencyId/arrived", emergencyController.MarkArrived)
		milestones.POST("/:emergencyId/picked", emergencyController.MarkPatientPicked)
		milestones.POST("/:emergencyId/en-route-hospital", emergencyController.MarkEnRouteHospital)
		milestones.POST("/:emergencyId/reached", emergencyController.MarkReachedHospital)
		milestones.POST("/:emergencyId/complete", emergencyController.CompleteRide)
	}
}
