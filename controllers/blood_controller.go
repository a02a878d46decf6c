package controllers

import (
	"strconv"

	"lifeline/middleware"
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BloodController struct {
	bloodService *services.BloodService
	validator    *utils.ValidationService
}

func NewBloodController(bloodService *services.BloodService, validator *utils.ValidationService) *BloodController {
	return &BloodController{
		bloodService: bloodService,
		validator:    validator,
	}
}

// CreateRequest opens a blood request and returns it with any immediate
// matches.
func (bc *BloodController) CreateRequest(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, 401, "User not authenticated", nil)
		return
	}

	var req models.CreateBloodRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := bc.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	request, err := bc.bloodService.CreateRequest(c.Request.Context(), userID, &req)
	if err != nil {
		logrus.Errorf("Create blood request failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Blood request created successfully", request)
}

func (bc *BloodController) GetRequest(c *gin.Context) {
	request, err := bc.bloodService.GetRequest(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Blood request retrieved successfully", request)
}

// Rematch re-runs bank matching for a still-pending request.
func (bc *BloodController) Rematch(c *gin.Context) {
	matched, err := bc.bloodService.Match(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Blood request matched successfully", matched)
}

// FulfillRequest settles the request against one bank and debits its stock.
func (bc *BloodController) FulfillRequest(c *gin.Context) {
	var req models.FulfillBloodRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := bc.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	request, err := bc.bloodService.Fulfil(c.Request.Context(), c.Param("requestId"), req.BloodBankID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Blood request fulfilled", request)
}

func (bc *BloodController) CancelRequest(c *gin.Context) {
	var req models.CancelEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}

	if err := bc.bloodService.Cancel(c.Request.Context(), c.Param("requestId"), req.Reason); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Blood request cancelled", nil)
}

func (bc *BloodController) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, 401, "User not authenticated", nil)
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	requests, err := bc.bloodService.History(c.Request.Context(), userID, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Blood request history retrieved successfully", requests)
}

func (bc *BloodController) GetBank(c *gin.Context) {
	bank, err := bc.bloodService.GetBank(c.Request.Context(), c.Param("bankId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Blood bank retrieved successfully", bank)
}

// UpdateStock sets a bank's stock for a blood group.
func (bc *BloodController) UpdateStock(c *gin.Context) {
	var req models.UpdateBloodStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := bc.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	if err := bc.bloodService.UpdateStock(c.Request.Context(), c.Param("bankId"), &req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Blood stock updated", nil)
}
