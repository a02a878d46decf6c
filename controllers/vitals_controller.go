package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type VitalsController struct {
	analyzer services.VitalsAnalyzer
}

func NewVitalsController(analyzer services.VitalsAnalyzer) *VitalsController {
	return &VitalsController{analyzer: analyzer}
}

// AnalyzeVitals grades a vitals reading and returns the risk assessment.
func (vc *VitalsController) AnalyzeVitals(c *gin.Context) {
	var reading models.VitalsReading
	if err := c.ShouldBindJSON(&reading); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}

	assessment := vc.analyzer.AnalyzeVitals(&reading)
	utils.SuccessResponse(c, "Vitals analyzed successfully", assessment)
}
