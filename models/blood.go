package models

import (
	"time"
)

// Core BloodBank struct
type BloodBank struct {
	ID           string           `json:"id" bson:"_id"`
	Name         string           `json:"name" bson:"name"`
	Contact      HospitalContact  `json:"contact" bson:"contact"`
	Location     FacilityLocation `json:"location" bson:"location"`
	HospitalID   string           `json:"hospitalId,omitempty" bson:"hospitalId,omitempty"`
	HospitalName string           `json:"hospitalName,omitempty" bson:"hospitalName,omitempty"`

	// Stock maps blood-group code to units on hand, never negative.
	Stock        map[string]int `json:"stock" bson:"stock"`
	StockUpdated time.Time      `json:"stockUpdated" bson:"stockUpdated"`

	Is24x7       bool   `json:"is24x7" bson:"is24x7"`
	Type         string `json:"type" bson:"type"`
	IsActive     bool   `json:"isActive" bson:"isActive"`
	IsGovernment bool   `json:"isGovernment" bson:"isGovernment"`

	TotalDonations int64 `json:"totalDonations" bson:"totalDonations"`
	TotalRequests  int64 `json:"totalRequests" bson:"totalRequests"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Coordinates returns the blood bank's fixed position.
func (bb BloodBank) Coordinates() (latitude, longitude float64) {
	return bb.Location.Latitude, bb.Location.Longitude
}

// Core BloodRequest struct
type BloodRequest struct {
	ID          string `json:"id" bson:"_id"`
	UserID      string `json:"userId" bson:"userId"`
	EmergencyID string `json:"emergencyId,omitempty" bson:"emergencyId,omitempty"`

	PatientName   string `json:"patientName" bson:"patientName"`
	PatientAge    int    `json:"patientAge" bson:"patientAge"`
	PatientGender string `json:"patientGender,omitempty" bson:"patientGender,omitempty"`
	PatientPhone  string `json:"patientPhone" bson:"patientPhone"`

	BloodGroup    string `json:"bloodGroup" bson:"bloodGroup"`
	UnitsRequired int    `json:"unitsRequired" bson:"unitsRequired"`
	Urgency       string `json:"urgency" bson:"urgency"`

	Location         EmergencyLocation `json:"location" bson:"location"`
	HospitalID       string            `json:"hospitalId,omitempty" bson:"hospitalId,omitempty"`
	HospitalName     string            `json:"hospitalName,omitempty" bson:"hospitalName,omitempty"`
	MedicalCondition string            `json:"medicalCondition,omitempty" bson:"medicalCondition,omitempty"`

	Status string `json:"status" bson:"status"`

	// MatchedBloodBanks is populated once, nearest first.
	MatchedBloodBanks []MatchedBloodBank `json:"matchedBloodBanks" bson:"matchedBloodBanks"`

	FulfilledBy  string     `json:"fulfilledBy,omitempty" bson:"fulfilledBy,omitempty"`
	FulfilledAt  *time.Time `json:"fulfilledAt,omitempty" bson:"fulfilledAt,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`

	// ExpiresAt closes the 24 hour validity window. Expired requests are
	// non-matchable; nothing sweeps them to a new status.
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type MatchedBloodBank struct {
	BloodBankID    string  `json:"bloodBankId" bson:"bloodBankId"`
	Name           string  `json:"name" bson:"name"`
	Phone          string  `json:"phone" bson:"phone"`
	Address        string  `json:"address" bson:"address"`
	Distance       float64 `json:"distance" bson:"distance"`
	AvailableUnits int     `json:"availableUnits" bson:"availableUnits"`
}

// Blood request status constants
const (
	BloodRequestStatusPending   = "pending"
	BloodRequestStatusMatched   = "matched"
	BloodRequestStatusFulfilled = "fulfilled"
	BloodRequestStatusCancelled = "cancelled"
)

// BloodRequestValidity is the window after which a request stops matching.
const BloodRequestValidity = 24 * time.Hour

// BloodGroups lists the eight fixed blood-group codes.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// IsValidBloodGroup reports whether the code is one of the eight fixed groups.
func IsValidBloodGroup(group string) bool {
	for _, g := range BloodGroups {
		if g == group {
			return true
		}
	}
	return false
}

// IsExpired reports whether the request has passed its validity window.
func (br *BloodRequest) IsExpired(now time.Time) bool {
	return now.After(br.ExpiresAt)
}

// =================== REQUEST MODELS ===================

type CreateBloodRequestRequest struct {
	EmergencyID      string            `json:"emergencyId,omitempty"`
	PatientName      string            `json:"patientName" validate:"required"`
	PatientAge       int               `json:"patientAge" validate:"min=0"`
	PatientGender    string            `json:"patientGender,omitempty"`
	PatientPhone     string            `json:"patientPhone" validate:"required"`
	BloodGroup       string            `json:"bloodGroup" validate:"required,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	UnitsRequired    int               `json:"unitsRequired" validate:"min=1"`
	Urgency          string            `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
	Location         EmergencyLocation `json:"location" validate:"required"`
	HospitalID       string            `json:"hospitalId,omitempty"`
	MedicalCondition string            `json:"medicalCondition,omitempty"`
}

type FulfillBloodRequestRequest struct {
	BloodBankID string `json:"bloodBankId" validate:"required"`
}

type UpdateBloodStockRequest struct {
	BloodGroup string `json:"bloodGroup" validate:"required,oneof=A+ A- B+ B- O+ O- AB+ AB-"`
	Units      int    `json:"units" validate:"min=0"`
}
