package routes

import (
	"lifeline/controllers"

	"github.com/gin-gonic/gin"
)

// SetupInsuranceRoutes configures the insurance policy routes.
func SetupInsuranceRoutes(router *gin.RouterGroup, insuranceController *controllers.InsuranceController) {
	insurance := router.Group("/insurance")
	{
		insurance.POST("/policy", insuranceController.RegisterPolicy)
		insurance.GET("/policy", insuranceController.GetPolicy)
		insurance.POST("/verify", insuranceController.VerifyPolicy)
	}
}
