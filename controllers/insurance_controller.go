package controllers

import (
	"time"

	"lifeline/middleware"
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type InsuranceController struct {
	insuranceService *services.InsuranceService
	validator        *utils.ValidationService
}

func NewInsuranceController(insuranceService *services.InsuranceService, validator *utils.ValidationService) *InsuranceController {
	return &InsuranceController{
		insuranceService: insuranceService,
		validator:        validator,
	}
}

type registerPolicyRequest struct {
	Provider     string          `json:"provider" validate:"required,oneof=ayushman_bharat aarogyasri private"`
	PolicyNumber string          `json:"policyNumber" validate:"required"`
	HolderName   string          `json:"holderName" validate:"required"`
	Coverage     models.Coverage `json:"coverage"`
	ValidFrom    string          `json:"validFrom" validate:"required"`
	ValidUpto    string          `json:"validUpto" validate:"required"`
}

// RegisterPolicy files the caller's insurance policy.
func (ic *InsuranceController) RegisterPolicy(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, 401, "User not authenticated", nil)
		return
	}

	var req registerPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := ic.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	validFrom, err1 := time.Parse("2006-01-02", req.ValidFrom)
	validUpto, err2 := time.Parse("2006-01-02", req.ValidUpto)
	if err1 != nil || err2 != nil {
		utils.ErrorResponse(c, 400, "validFrom and validUpto must be YYYY-MM-DD dates", nil)
		return
	}

	policy := &models.InsurancePolicy{
		ID:           uuid.New().String(),
		UserID:       userID,
		Provider:     req.Provider,
		PolicyNumber: req.PolicyNumber,
		HolderName:   req.HolderName,
		Status:       models.InsuranceStatusActive,
		Coverage:     req.Coverage,
		ValidFrom:    validFrom,
		ValidUpto:    validUpto,
	}

	if err := ic.insuranceService.Register(c.Request.Context(), policy); err != nil {
		logrus.Errorf("Register policy failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Insurance policy registered successfully", policy)
}

// GetPolicy returns the caller's policy.
func (ic *InsuranceController) GetPolicy(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, 401, "User not authenticated", nil)
		return
	}

	policy, err := ic.insuranceService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Insurance policy retrieved successfully", policy)
}

// VerifyPolicy runs provider verification for the caller's coverage.
func (ic *InsuranceController) VerifyPolicy(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, 401, "User not authenticated", nil)
		return
	}

	_, result, err := ic.insuranceService.Verify(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Insurance verification completed", result)
}
