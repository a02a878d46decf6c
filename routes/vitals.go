package routes

import (
	"lifeline/controllers"

	"github.com/gin-gonic/gin"
)

// SetupVitalsRoutes configures the vitals analysis route.
func SetupVitalsRoutes(router *gin.RouterGroup, vitalsController *controllers.VitalsController) {
	vitals := router.Group("/vitals")
	{
		vitals.POST("/analyze", vitalsController.AnalyzeVitals)
	}
}
