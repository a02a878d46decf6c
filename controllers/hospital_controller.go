package controllers

import (
	"strconv"

	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HospitalController struct {
	hospitalService *services.HospitalService
	validator       *utils.ValidationService
}

func NewHospitalController(hospitalService *services.HospitalService, validator *utils.ValidationService) *HospitalController {
	return &HospitalController{
		hospitalService: hospitalService,
		validator:       validator,
	}
}

// RegisterHospital adds a hospital to the directory.
func (hc *HospitalController) RegisterHospital(c *gin.Context) {
	var req models.CreateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := hc.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	hospital, err := hc.hospitalService.Register(c.Request.Context(), &req)
	if err != nil {
		logrus.Errorf("Register hospital failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Hospital registered successfully", hospital)
}

func (hc *HospitalController) GetHospital(c *gin.Context) {
	hospital, err := hc.hospitalService.GetByID(c.Request.Context(), c.Param("hospitalId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Hospital retrieved successfully", hospital)
}

// Nearby lists active hospitals around a point, nearest first.
func (hc *HospitalController) Nearby(c *gin.Context) {
	latitude, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	longitude, lonErr := strconv.ParseFloat(c.Query("longitude"), 64)
	if latErr != nil || lonErr != nil {
		utils.ErrorResponse(c, 400, "latitude and longitude query parameters are required", nil)
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "20"), 64)
	if err != nil || radius <= 0 {
		radius = 20
	}

	hospitals, err := hc.hospitalService.Nearby(c.Request.Context(), latitude, longitude, radius)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Nearby hospitals retrieved successfully", hospitals)
}

// UpdateBeds sets a ward's available bed count.
func (hc *HospitalController) UpdateBeds(c *gin.Context) {
	var req models.UpdateBedAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := hc.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	if err := hc.hospitalService.UpdateBeds(c.Request.Context(), c.Param("hospitalId"), &req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bed availability updated", nil)
}
