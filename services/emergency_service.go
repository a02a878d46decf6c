package services

import (
	"context"
	"fmt"
	"time"

	"lifeline/models"
	"lifeline/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EmergencyStore is the persistence surface of the emergency ledger. Every
// state-changing method is a single conditional write; the service layer
// never holds locks across calls.
type EmergencyStore interface {
	Create(ctx context.Context, emergency *models.Emergency) error
	GetByID(ctx context.Context, id string) (*models.Emergency, error)
	Transition(ctx context.Context, id string, update models.EmergencyUpdate) (*models.Emergency, error)
	AppendNote(ctx context.Context, id, message string) error
	SetHospital(ctx context.Context, id string, hospital models.AssignedHospital, message string) error
	MarkAlertSent(ctx context.Context, id, flag string) (bool, error)
	SetInsurance(ctx context.Context, id string, insurance models.InsuranceSnapshot) error
	SetEstimatedArrival(ctx context.Context, id string, minutes int) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Emergency, error)
	ListActive(ctx context.Context) ([]models.Emergency, error)
}

/// EmergencyService owns the emergency lifecycle: creation, the status state
// machine and the append-only timeline. Resource matching lives in the
// dispatch service; this layer only records what happened.
type EmergencyService struct {
	store EmergencyStore
}

func NewEmergencyService(store EmergencyStore) *EmergencyService {
	return &EmergencyService{store: store}
}

// PriorityForType grades an emergency for triage. Cardiac, stroke and
// breathing cases are minutes-critical; everything else is high.
func PriorityForType(emergencyType string) string {
	switch emergencyType {
	case models.EmergencyTypeCardiac, models.EmergencyTypeStroke, models.EmergencyTypeBreathing:
		return "critical"
	default:
		return "high"
	}
}

// Create opens a new emergency in triggered status with its first timeline
// entry. The patient snapshot is frozen here; later profile edits do not
// touch it.
func (es *EmergencyService) Create(ctx context.Context, userID string, patient models.PatientSnapshot, req *models.TriggerEmergencyRequest) (*models.Emergency, error) {
	if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
		return nil, utils.NewBadRequestError("invalid coordinates")
	}

	emergencyType := req.EmergencyType
	if emergencyType == "" {
		emergencyType = models.EmergencyTypeOther
	}

	emergency := &models.Emergency{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          emergencyType,
		Priority:      PriorityForType(emergencyType),
		Status:        models.EmergencyStatusTriggered,
		Symptoms:      req.Symptoms,
		Patient:       patient,
		Location:      req.Location,
		Vitals:        req.Vitals,
		Notes:         req.Notes,
		IsOfflineMode: req.IsOfflineMode,
		Insurance: models.InsuranceSnapshot{
			Status: models.InsuranceStatusPending,
		},
		Timeline: []models.TimelineEntry{
			{
				Status:    models.EmergencyStatusTriggered,
				Timestamp: time.Now(),
				Message:   fmt.Sprintf("Emergency triggered: %s", emergencyType),
			},
		},
	}

	if err := es.store.Create(ctx, emergency); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"emergencyId": emergency.ID,
		"userId":      userID,
		"type":        emergencyType,
		"priority":    emergency.Priority,
	}).Info("Emergency created")

	return emergency, nil
}

func (es *EmergencyService) GetByID(ctx context.Context, id string) (*models.Emergency, error) {
	return es.store.GetByID(ctx, id)
}

// Transition moves the emergency to newStatus if the state machine allows
// it from any current status. Out-of-order and terminal-state calls come
// back as invalid-transition conflicts.
func (es *EmergencyService) Transition(ctx context.Context, id, newStatus, message string) (*models.Emergency, error) {
	sources := models.TransitionSources(newStatus)
	if len(sources) == 0 {
		return nil, utils.NewBadRequestError("unknown status: " + newStatus)
	}

	return es.store.Transition(ctx, id, models.EmergencyUpdate{
		NewStatus:   newStatus,
		Message:     message,
		AllowedFrom: sources,
	})
}

// AssignAmbulance records an ambulance claim on the ledger as one atomic
// transition from triggered.
func (es *EmergencyService) AssignAmbulance(ctx context.Context, id string, ambulance *models.Ambulance) (*models.Emergency, error) {
	message := fmt.Sprintf("Ambulance %s assigned, driver %s", ambulance.VehicleNumber, ambulance.Driver.Name)

	return es.store.Transition(ctx, id, models.EmergencyUpdate{
		NewStatus:   models.EmergencyStatusAmbulanceAssigned,
		Message:     message,
		AllowedFrom: []string{models.EmergencyStatusTriggered},
		Ambulance: &models.AssignedAmbulance{
			AmbulanceID: ambulance.ID,
			Details: models.AmbulanceRef{
				DriverName:    ambulance.Driver.Name,
				DriverPhone:   ambulance.Driver.Phone,
				VehicleNumber: ambulance.VehicleNumber,
				Type:          ambulance.Type,
			},
		},
	})
}

// AssignHospital pins the destination hospital onto the ledger without a
// status change.
func (es *EmergencyService) AssignHospital(ctx context.Context, id string, hospital *models.Hospital, distance float64, etaMinutes int) error {
	message := fmt.Sprintf("Hospital %s pre-alerted, %.2f km away", hospital.Name, distance)

	return es.store.SetHospital(ctx, id, models.AssignedHospital{
		HospitalID: hospital.ID,
		Details: models.HospitalRef{
			Name:     hospital.Name,
			Phone:    hospital.Contact.EmergencyPhone,
			Address:  hospital.Location.Address,
			Distance: distance,
		},
		EstimatedArrivalMins: etaMinutes,
	}, message)
}

// Cancel closes the emergency from any active status.
func (es *EmergencyService) Cancel(ctx context.Context, id, reason string) (*models.Emergency, error) {
	message := "Emergency cancelled"
	if reason != "" {
		message = "Emergency cancelled: " + reason
	}

	return es.store.Transition(ctx, id, models.EmergencyUpdate{
		NewStatus:   models.EmergencyStatusCancelled,
		Message:     message,
		AllowedFrom: models.ActiveEmergencyStatuses(),
	})
}

func (es *EmergencyService) History(ctx context.Context, userID string, limit int64) ([]models.Emergency, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return es.store.ListByUser(ctx, userID, limit)
}

func (es *EmergencyService) ListActive(ctx context.Context) ([]models.Emergency, error) {
	return es.store.ListActive(ctx)
}
