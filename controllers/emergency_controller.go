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

type EmergencyController struct {
	dispatchService  *services.DispatchService
	emergencyService *services.EmergencyService
	validator        *utils.ValidationService
}

func NewEmergencyController(dispatchService *services.DispatchService, emergencyService *services.EmergencyService, validator *utils.ValidationService) *EmergencyController {
	return &EmergencyController{
		dispatchService:  dispatchService,
		emergencyService: emergencyService,
		validator:        validator,
	}
}

// TriggerEmergency opens an emergency and kicks off the dispatch fan-out.
// The response returns as soon as the emergency is persisted; assignment
// progress arrives via notifications and polling.
func (ec *EmergencyController) TriggerEmergency(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, 401, "User not authenticated", nil)
		return
	}

	var body struct {
		models.TriggerEmergencyRequest
		Patient models.PatientSnapshot `json:"patient" validate:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}
	if errs := ec.validator.ValidateStruct(body.TriggerEmergencyRequest); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	emergency, err := ec.dispatchService.Trigger(c.Request.Context(), userID, body.Patient, &body.TriggerEmergencyRequest)
	if err != nil {
		logrus.Errorf("Trigger emergency failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Emergency triggered successfully", emergency)
}

// GetEmergency returns one emergency with its full timeline.
func (ec *EmergencyController) GetEmergency(c *gin.Context) {
	emergency, err := ec.emergencyService.GetByID(c.Request.Context(), c.Param("emergencyId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency retrieved successfully", emergency)
}

// GetHistory lists the caller's past emergencies, newest first.
func (ec *EmergencyController) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, 401, "User not authenticated", nil)
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	emergencies, err := ec.emergencyService.History(c.Request.Context(), userID, limit)
	if err != nil {
		logrus.Errorf("Get emergency history failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency history retrieved successfully", emergencies)
}

// ListActive lists every non-terminal emergency. Operator view.
func (ec *EmergencyController) ListActive(c *gin.Context) {
	emergencies, err := ec.emergencyService.ListActive(c.Request.Context())
	if err != nil {
		logrus.Errorf("List active emergencies failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Active emergencies retrieved successfully", emergencies)
}

// AssignAmbulance manually re-runs ambulance assignment for an emergency
// still in triggered state, for example after the hotline fallback.
func (ec *EmergencyController) AssignAmbulance(c *gin.Context) {
	outcome, err := ec.dispatchService.AssignNearestAmbulance(c.Request.Context(), c.Param("emergencyId"))
	if err != nil {
		logrus.Errorf("Assign ambulance failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, outcome.Message, outcome)
}

func (ec *EmergencyController) milestoneRequest(c *gin.Context) (string, string, bool) {
	var req models.MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return "", "", false
	}
	if errs := ec.validator.ValidateStruct(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return "", "", false
	}
	return c.Param("emergencyId"), req.AmbulanceID, true
}

// MarkEnRoute records the ambulance heading to the patient.
func (ec *EmergencyController) MarkEnRoute(c *gin.Context) {
	emergencyID, ambulanceID, ok := ec.milestoneRequest(c)
	if !ok {
		return
	}

	emergency, err := ec.dispatchService.MarkEnRoute(c.Request.Context(), emergencyID, ambulanceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", emergency)
}

// MarkArrived records the ambulance at the patient location.
func (ec *EmergencyController) MarkArrived(c *gin.Context) {
	emergencyID, ambulanceID, ok := ec.milestoneRequest(c)
	if !ok {
		return
	}

	emergency, err := ec.dispatchService.MarkArrived(c.Request.Context(), emergencyID, ambulanceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", emergency)
}

// MarkPatientPicked records patient pickup.
func (ec *EmergencyController) MarkPatientPicked(c *gin.Context) {
	emergencyID, ambulanceID, ok := ec.milestoneRequest(c)
	if !ok {
		return
	}

	emergency, err := ec.dispatchService.MarkPatientPicked(c.Request.Context(), emergencyID, ambulanceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", emergency)
}

// MarkEnRouteHospital records transport toward the hospital.
func (ec *EmergencyController) MarkEnRouteHospital(c *gin.Context) {
	emergencyID, ambulanceID, ok := ec.milestoneRequest(c)
	if !ok {
		return
	}

	emergency, err := ec.dispatchService.MarkEnRouteHospital(c.Request.Context(), emergencyID, ambulanceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", emergency)
}

// MarkReachedHospital records arrival at the hospital.
func (ec *EmergencyController) MarkReachedHospital(c *gin.Context) {
	emergencyID, ambulanceID, ok := ec.milestoneRequest(c)
	if !ok {
		return
	}

	emergency, err := ec.dispatchService.MarkReachedHospital(c.Request.Context(), emergencyID, ambulanceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", emergency)
}

// CompleteRide closes the emergency and frees the ambulance.
func (ec *EmergencyController) CompleteRide(c *gin.Context) {
	emergencyID, ambulanceID, ok := ec.milestoneRequest(c)
	if !ok {
		return
	}

	emergency, err := ec.dispatchService.CompleteRide(c.Request.Context(), emergencyID, ambulanceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency completed", emergency)
}

// CancelEmergency closes the emergency and frees any claimed resources.
func (ec *EmergencyController) CancelEmergency(c *gin.Context) {
	var req models.CancelEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, 400, "Invalid request body", nil)
		return
	}

	emergency, err := ec.dispatchService.CancelEmergency(c.Request.Context(), c.Param("emergencyId"), req.Reason)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency cancelled", emergency)
}
