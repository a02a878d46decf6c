package models

import (
	"time"
)

// Core Hospital struct
type Hospital struct {
	ID          string             `json:"id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Type        string             `json:"type" bson:"type"`
	Contact     HospitalContact    `json:"contact" bson:"contact"`
	Location    FacilityLocation   `json:"location" bson:"location"`
	Facilities  HospitalFacilities `json:"facilities" bson:"facilities"`
	Specialties []string           `json:"specialties,omitempty" bson:"specialties,omitempty"`
	Beds        BedAvailability    `json:"beds" bson:"beds"`

	// InsuranceAccepted holds provider identifiers this hospital admits under.
	InsuranceAccepted []string `json:"insuranceAccepted" bson:"insuranceAccepted"`

	Rating        float64 `json:"rating" bson:"rating"`
	TotalPatients int64   `json:"totalPatients" bson:"totalPatients"`
	IsActive      bool    `json:"isActive" bson:"isActive"`
	IsGovernment  bool    `json:"isGovernment" bson:"isGovernment"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Coordinates returns the hospital's fixed position.
func (h Hospital) Coordinates() (latitude, longitude float64) {
	return h.Location.Latitude, h.Location.Longitude
}

type HospitalContact struct {
	Phone          string `json:"phone" bson:"phone"`
	EmergencyPhone string `json:"emergencyPhone" bson:"emergencyPhone"`
	Email          string `json:"email,omitempty" bson:"email,omitempty"`
}

type FacilityLocation struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Address   string  `json:"address" bson:"address"`
	City      string  `json:"city,omitempty" bson:"city,omitempty"`
	State     string  `json:"state,omitempty" bson:"state,omitempty"`
	Pincode   string  `json:"pincode,omitempty" bson:"pincode,omitempty"`
}

type HospitalFacilities struct {
	EmergencyWard    bool `json:"emergencyWard" bson:"emergencyWard"`
	ICU              bool `json:"icu" bson:"icu"`
	NICU             bool `json:"nicu" bson:"nicu"`
	OperationTheater bool `json:"operationTheater" bson:"operationTheater"`
	BloodBank        bool `json:"bloodBank" bson:"bloodBank"`
	AmbulanceService bool `json:"ambulanceService" bson:"ambulanceService"`
	Pharmacy         bool `json:"pharmacy" bson:"pharmacy"`
	Diagnostics      bool `json:"diagnostics" bson:"diagnostics"`
}

// BedAvailability invariant: 0 <= available <= total for every counter.
type BedAvailability struct {
	Total       int        `json:"total" bson:"total"`
	Available   int        `json:"available" bson:"available"`
	ICU         BedCounter `json:"icu" bson:"icu"`
	Emergency   BedCounter `json:"emergency" bson:"emergency"`
	LastUpdated time.Time  `json:"lastUpdated" bson:"lastUpdated"`
}

type BedCounter struct {
	Total     int `json:"total" bson:"total"`
	Available int `json:"available" bson:"available"`
}

// Bed type constants
const (
	BedTypeGeneral   = "general"
	BedTypeICU       = "icu"
	BedTypeEmergency = "emergency"
)

// BedTypeForEmergency selects the ward a given emergency type admits into.
// Cardiac and stroke cases go straight to intensive care.
func BedTypeForEmergency(emergencyType string) string {
	switch emergencyType {
	case EmergencyTypeCardiac, EmergencyTypeStroke:
		return BedTypeICU
	default:
		return BedTypeEmergency
	}
}

// =================== REQUEST MODELS ===================

type CreateHospitalRequest struct {
	Name              string             `json:"name" validate:"required"`
	Type              string             `json:"type,omitempty"`
	Contact           HospitalContact    `json:"contact" validate:"required"`
	Location          FacilityLocation   `json:"location" validate:"required"`
	Facilities        HospitalFacilities `json:"facilities"`
	Specialties       []string           `json:"specialties,omitempty"`
	Beds              BedAvailability    `json:"beds"`
	InsuranceAccepted []string           `json:"insuranceAccepted,omitempty"`
	IsGovernment      bool               `json:"isGovernment"`
}

type UpdateBedAvailabilityRequest struct {
	BedType   string `json:"bedType" validate:"required,oneof=general icu emergency"`
	Available int    `json:"available" validate:"min=0"`
}
