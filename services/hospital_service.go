package services

import (
	"context"

	"lifeline/models"
	"lifeline/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HospitalAdminStore covers hospital administration.
type HospitalAdminStore interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	GetByID(ctx context.Context, id string) (*models.Hospital, error)
	ListActive(ctx context.Context) ([]models.Hospital, error)
	UpdateBedAvailability(ctx context.Context, hospitalID, bedType string, available int) error
}

// HospitalService manages the hospital directory and bed administration.
type HospitalService struct {
	store HospitalAdminStore
}

func NewHospitalService(store HospitalAdminStore) *HospitalService {
	return &HospitalService{store: store}
}

func (hs *HospitalService) Register(ctx context.Context, req *models.CreateHospitalRequest) (*models.Hospital, error) {
	if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
		return nil, utils.NewBadRequestError("invalid coordinates")
	}
	if err := validateBedCounters(req.Beds); err != nil {
		return nil, err
	}

	hospital := &models.Hospital{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Type:              req.Type,
		Contact:           req.Contact,
		Location:          req.Location,
		Facilities:        req.Facilities,
		Specialties:       req.Specialties,
		Beds:              req.Beds,
		InsuranceAccepted: req.InsuranceAccepted,
		IsActive:          true,
		IsGovernment:      req.IsGovernment,
	}

	if err := hs.store.Create(ctx, hospital); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"hospitalId": hospital.ID,
		"name":       hospital.Name,
	}).Info("Hospital registered")

	return hospital, nil
}

func (hs *HospitalService) GetByID(ctx context.Context, id string) (*models.Hospital, error) {
	return hs.store.GetByID(ctx, id)
}

// Nearby lists active hospitals within the radius, nearest first.
func (hs *HospitalService) Nearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]utils.Ranked[models.Hospital], error) {
	if !utils.IsValidCoordinate(latitude, longitude) {
		return nil, utils.NewBadRequestError("invalid coordinates")
	}

	hospitals, err := hs.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	origin := utils.Coordinate{Latitude: latitude, Longitude: longitude}
	return utils.RankByDistance(origin, hospitals, radiusKm), nil
}

// UpdateBeds sets the available count for a ward.
func (hs *HospitalService) UpdateBeds(ctx context.Context, hospitalID string, req *models.UpdateBedAvailabilityRequest) error {
	return hs.store.UpdateBedAvailability(ctx, hospitalID, req.BedType, req.Available)
}

func validateBedCounters(beds models.BedAvailability) error {
	counters := []models.BedCounter{
		{Total: beds.Total, Available: beds.Available},
		beds.ICU,
		beds.Emergency,
	}
	for _, c := range counters {
		if c.Available < 0 || c.Total < 0 || c.Available > c.Total {
			return utils.NewBadRequestError("bed counters must satisfy 0 <= available <= total")
		}
	}
	return nil
}
