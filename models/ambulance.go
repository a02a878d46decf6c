package models

import (
	"time"
)

// Core Ambulance struct
type Ambulance struct {
	ID            string              `json:"id" bson:"_id"`
	VehicleNumber string              `json:"vehicleNumber" bson:"vehicleNumber"`
	Type          string              `json:"type" bson:"type"`
	Status        string              `json:"status" bson:"status"`
	Driver        DriverInfo          `json:"driver" bson:"driver"`
	Location      AmbulanceLocation   `json:"location" bson:"location"`
	Facilities    AmbulanceFacilities `json:"facilities" bson:"facilities"`

	// CurrentEmergencyID is non-empty exactly while the ambulance is engaged
	// (status not in available/offline/maintenance).
	CurrentEmergencyID string `json:"currentEmergencyId,omitempty" bson:"currentEmergencyId,omitempty"`

	Provider        string  `json:"provider" bson:"provider"`
	ProviderContact string  `json:"providerContact,omitempty" bson:"providerContact,omitempty"`
	Rating          float64 `json:"rating" bson:"rating"`
	TotalRides      int64   `json:"totalRides" bson:"totalRides"`
	IsActive        bool    `json:"isActive" bson:"isActive"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Coordinates returns the ambulance's last reported position.
func (a Ambulance) Coordinates() (latitude, longitude float64) {
	return a.Location.Latitude, a.Location.Longitude
}

type DriverInfo struct {
	Name          string `json:"name" bson:"name"`
	Phone         string `json:"phone" bson:"phone"`
	LicenseNumber string `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
}

type AmbulanceLocation struct {
	Latitude    float64   `json:"latitude" bson:"latitude"`
	Longitude   float64   `json:"longitude" bson:"longitude"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

type AmbulanceFacilities struct {
	Oxygen               bool `json:"oxygen" bson:"oxygen"`
	Ventilator           bool `json:"ventilator" bson:"ventilator"`
	Defibrillator        bool `json:"defibrillator" bson:"defibrillator"`
	BloodPressureMonitor bool `json:"bloodPressureMonitor" bson:"bloodPressureMonitor"`
	FirstAidKit          bool `json:"firstAidKit" bson:"firstAidKit"`
	Stretcher            bool `json:"stretcher" bson:"stretcher"`
}

// Ambulance status constants
const (
	AmbulanceStatusAvailable    = "available"
	AmbulanceStatusAssigned     = "assigned"
	AmbulanceStatusEnRoute      = "en_route"
	AmbulanceStatusArrived      = "arrived"
	AmbulanceStatusTransporting = "transporting"
	AmbulanceStatusOffline      = "offline"
	AmbulanceStatusMaintenance  = "maintenance"
)

// Ambulance type constants
const (
	AmbulanceTypeBasic    = "basic"
	AmbulanceTypeAdvanced = "advanced"
	AmbulanceTypeICU      = "icu"
)

// =================== REQUEST MODELS ===================

type CreateAmbulanceRequest struct {
	VehicleNumber string              `json:"vehicleNumber" validate:"required"`
	Type          string              `json:"type" validate:"omitempty,oneof=basic advanced icu"`
	Driver        DriverInfo          `json:"driver" validate:"required"`
	Location      EmergencyLocation   `json:"location" validate:"required"`
	Facilities    AmbulanceFacilities `json:"facilities"`
	Provider      string              `json:"provider,omitempty"`
}

type UpdateAmbulanceLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Address   string  `json:"address,omitempty"`
}

type UpdateAmbulanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available offline maintenance"`
}
