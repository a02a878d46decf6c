package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AmbulanceController struct {
	ambulanceService *services.AmbulanceService
	validator        *utils.ValidationService
}

func NewAmbulanceController(ambulanceService *services.AmbulanceService, validator *utils.ValidationService) *AmbulanceController {
	return &AmbulanceController{
		ambulanceService: ambulanceService,
		validator:        validator,
	}
}

// RegisterAmbulance adds a vehicle to the fleet.
func (ac *AmbulanceController) RegisterAmbulance(c *gin.Context) {
	var req models.CreateAmbulanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := ac.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	ambulance, err := ac.ambulanceService.Register(c.Request.Context(), &req)
	if err != nil {
		logrus.Errorf("Register ambulance failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ambulance registered successfully", ambulance)
}

func (ac *AmbulanceController) GetAmbulance(c *gin.Context) {
	ambulance, err := ac.ambulanceService.GetByID(c.Request.Context(), c.Param("ambulanceId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ambulance retrieved successfully", ambulance)
}

func (ac *AmbulanceController) ListAvailable(c *gin.Context) {
	ambulances, err := ac.ambulanceService.ListAvailable(c.Request.Context())
	if err != nil {
		logrus.Errorf("List ambulances failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Available ambulances retrieved successfully", ambulances)
}

// UpdateLocation stores the driver's live position and refreshes the ETA of
// any inbound ride.
func (ac *AmbulanceController) UpdateLocation(c *gin.Context) {
	var req models.UpdateAmbulanceLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := ac.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	if err := ac.ambulanceService.ReportLocation(c.Request.Context(), c.Param("ambulanceId"), &req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated", nil)
}

// UpdateStatus takes an idle ambulance in or out of service.
func (ac *AmbulanceController) UpdateStatus(c *gin.Context) {
	var req models.UpdateAmbulanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := ac.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	if err := ac.ambulanceService.SetAvailability(c.Request.Context(), c.Param("ambulanceId"), req.Status); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", nil)
}
