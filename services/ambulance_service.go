package services

import (
	"context"

	"lifeline/models"
	"lifeline/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AmbulanceAdminStore covers fleet administration and live tracking.
type AmbulanceAdminStore interface {
	Create(ctx context.Context, ambulance *models.Ambulance) error
	GetByID(ctx context.Context, id string) (*models.Ambulance, error)
	ListAvailable(ctx context.Context) ([]models.Ambulance, error)
	UpdateLocation(ctx context.Context, ambulanceID string, latitude, longitude float64, address string) error
	SetAvailability(ctx context.Context, ambulanceID, status string) error
}

// AmbulanceService manages the fleet outside of dispatch: registration,
// live location reporting and availability toggles. Location updates for an
// engaged ambulance also refresh the ETA on its emergency.
type AmbulanceService struct {
	store       AmbulanceAdminStore
	emergencies EmergencyStore
	planner     RoutePlanner
}

func NewAmbulanceService(store AmbulanceAdminStore, emergencies EmergencyStore, planner RoutePlanner) *AmbulanceService {
	return &AmbulanceService{
		store:       store,
		emergencies: emergencies,
		planner:     planner,
	}
}

func (as *AmbulanceService) Register(ctx context.Context, req *models.CreateAmbulanceRequest) (*models.Ambulance, error) {
	if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
		return nil, utils.NewBadRequestError("invalid coordinates")
	}

	ambulanceType := req.Type
	if ambulanceType == "" {
		ambulanceType = models.AmbulanceTypeBasic
	}
	provider := req.Provider
	if provider == "" {
		provider = "108"
	}

	ambulance := &models.Ambulance{
		ID:            uuid.New().String(),
		VehicleNumber: req.VehicleNumber,
		Type:          ambulanceType,
		Status:        models.AmbulanceStatusAvailable,
		Driver:        req.Driver,
		Location: models.AmbulanceLocation{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			Address:   req.Location.Address,
		},
		Facilities: req.Facilities,
		Provider:   provider,
		IsActive:   true,
	}

	if err := as.store.Create(ctx, ambulance); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"ambulanceId":   ambulance.ID,
		"vehicleNumber": ambulance.VehicleNumber,
	}).Info("Ambulance registered")

	return ambulance, nil
}

func (as *AmbulanceService) GetByID(ctx context.Context, id string) (*models.Ambulance, error) {
	return as.store.GetByID(ctx, id)
}

func (as *AmbulanceService) ListAvailable(ctx context.Context) ([]models.Ambulance, error) {
	return as.store.ListAvailable(ctx)
}

// ReportLocation stores the driver's position. When the ambulance is
// engaged and still inbound, the emergency's ETA is refreshed from the new
// position.
func (as *AmbulanceService) ReportLocation(ctx context.Context, ambulanceID string, req *models.UpdateAmbulanceLocationRequest) error {
	if !utils.IsValidCoordinate(req.Latitude, req.Longitude) {
		return utils.NewBadRequestError("invalid coordinates")
	}

	if err := as.store.UpdateLocation(ctx, ambulanceID, req.Latitude, req.Longitude, req.Address); err != nil {
		return err
	}

	ambulance, err := as.store.GetByID(ctx, ambulanceID)
	if err != nil {
		return err
	}
	if ambulance.CurrentEmergencyID == "" {
		return nil
	}

	emergency, err := as.emergencies.GetByID(ctx, ambulance.CurrentEmergencyID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil
		}
		return err
	}

	switch emergency.Status {
	case models.EmergencyStatusAmbulanceAssigned, models.EmergencyStatusAmbulanceEnRoute:
		eta := EstimateRoute(ctx, as.planner,
			req.Latitude, req.Longitude,
			emergency.Location.Latitude, emergency.Location.Longitude)
		if err := as.emergencies.SetEstimatedArrival(ctx, emergency.ID, eta.DurationMinutes); err != nil {
			logrus.Warnf("Failed to refresh ETA for emergency %s: %v", emergency.ID, err)
		}
	}

	return nil
}

// SetAvailability takes an idle ambulance in or out of service. Engaged
// ambulances are rejected; their status belongs to the dispatch workflow.
func (as *AmbulanceService) SetAvailability(ctx context.Context, ambulanceID, status string) error {
	switch status {
	case models.AmbulanceStatusAvailable, models.AmbulanceStatusOffline, models.AmbulanceStatusMaintenance:
	default:
		return utils.NewBadRequestError("status must be available, offline or maintenance")
	}

	return as.store.SetAvailability(ctx, ambulanceID, status)
}
