package models

import (
	"time"
)

// Core Emergency struct
type Emergency struct {
	ID            string            `json:"id" bson:"_id"`
	UserID        string            `json:"userId" bson:"userId"`
	Type          string            `json:"type" bson:"type"`
	Priority      string            `json:"priority" bson:"priority"`
	Status        string            `json:"status" bson:"status"`
	Symptoms      []string          `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	Patient       PatientSnapshot   `json:"patient" bson:"patient"`
	Location      EmergencyLocation `json:"location" bson:"location"`
	Vitals        *VitalsReading    `json:"vitals,omitempty" bson:"vitals,omitempty"`
	Timeline      []TimelineEntry   `json:"timeline" bson:"timeline"`
	Insurance     InsuranceSnapshot `json:"insurance" bson:"insurance"`
	AlertsSent    AlertFlags        `json:"alertsSent" bson:"alertsSent"`
	IsOfflineMode bool              `json:"isOfflineMode" bson:"isOfflineMode"`
	Notes         string            `json:"notes,omitempty" bson:"notes,omitempty"`

	// Ambulance assignment
	AmbulanceID         string        `json:"ambulanceId,omitempty" bson:"ambulanceId,omitempty"`
	AmbulanceDetails    *AmbulanceRef `json:"ambulanceDetails,omitempty" bson:"ambulanceDetails,omitempty"`
	AmbulanceAssignedAt *time.Time    `json:"ambulanceAssignedAt,omitempty" bson:"ambulanceAssignedAt,omitempty"`
	AmbulanceArrivedAt  *time.Time    `json:"ambulanceArrivedAt,omitempty" bson:"ambulanceArrivedAt,omitempty"`

	// Hospital assignment
	HospitalID           string       `json:"hospitalId,omitempty" bson:"hospitalId,omitempty"`
	HospitalDetails      *HospitalRef `json:"hospitalDetails,omitempty" bson:"hospitalDetails,omitempty"`
	EstimatedArrivalMins int          `json:"estimatedArrivalMins,omitempty" bson:"estimatedArrivalMins,omitempty"`

	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// PatientSnapshot is copied from the user profile at trigger time. Later
// profile edits never alter historical emergencies.
type PatientSnapshot struct {
	Name        string             `json:"name" bson:"name"`
	Age         int                `json:"age" bson:"age"`
	Gender      string             `json:"gender" bson:"gender"`
	BloodGroup  string             `json:"bloodGroup" bson:"bloodGroup"`
	PhoneNumber string             `json:"phoneNumber" bson:"phoneNumber"`
	DeviceToken string             `json:"deviceToken,omitempty" bson:"deviceToken,omitempty"`
	Contacts    []EmergencyContact `json:"contacts,omitempty" bson:"contacts,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name" bson:"name"`
	Phone        string `json:"phone" bson:"phone"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
}

type EmergencyLocation struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
}

// TimelineEntry is one record of the append-only audit timeline. Entries are
// never truncated or reordered; one entry per accepted transition.
type TimelineEntry struct {
	Status    string    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Message   string    `json:"message" bson:"message"`
}

type InsuranceSnapshot struct {
	HasInsurance    bool   `json:"hasInsurance" bson:"hasInsurance"`
	Provider        string `json:"provider,omitempty" bson:"provider,omitempty"`
	PolicyNumber    string `json:"policyNumber,omitempty" bson:"policyNumber,omitempty"`
	Status          string `json:"status" bson:"status"`
	PreApprovalSent bool   `json:"preApprovalSent" bson:"preApprovalSent"`
}

// AlertFlags are write-once markers guarding duplicate notification fan-out.
type AlertFlags struct {
	Contacts  bool `json:"contacts" bson:"contacts"`
	Ambulance bool `json:"ambulance" bson:"ambulance"`
	Hospital  bool `json:"hospital" bson:"hospital"`
	BloodBank bool `json:"bloodBank" bson:"bloodBank"`
}

// Alert flag names accepted by the emergency store.
const (
	AlertContacts  = "contacts"
	AlertAmbulance = "ambulance"
	AlertHospital  = "hospital"
	AlertBloodBank = "bloodBank"
)

type AmbulanceRef struct {
	DriverName    string `json:"driverName" bson:"driverName"`
	DriverPhone   string `json:"driverPhone" bson:"driverPhone"`
	VehicleNumber string `json:"vehicleNumber" bson:"vehicleNumber"`
	Type          string `json:"type" bson:"type"`
}

type HospitalRef struct {
	Name     string  `json:"name" bson:"name"`
	Phone    string  `json:"phone" bson:"phone"`
	Address  string  `json:"address" bson:"address"`
	Distance float64 `json:"distance" bson:"distance"`
}

// Emergency status constants
const (
	EmergencyStatusTriggered         = "triggered"
	EmergencyStatusAmbulanceAssigned = "ambulance_assigned"
	EmergencyStatusAmbulanceEnRoute  = "ambulance_en_route"
	EmergencyStatusAmbulanceArrived  = "ambulance_arrived"
	EmergencyStatusPatientPicked     = "patient_picked"
	EmergencyStatusEnRouteHospital   = "en_route_hospital"
	EmergencyStatusReachedHospital   = "reached_hospital"
	EmergencyStatusCompleted         = "completed"
	EmergencyStatusCancelled         = "cancelled"
)

// Emergency type constants
const (
	EmergencyTypeCardiac   = "cardiac"
	EmergencyTypeStroke    = "stroke"
	EmergencyTypeAccident  = "accident"
	EmergencyTypePregnancy = "pregnancy"
	EmergencyTypeBreathing = "breathing"
	EmergencyTypeTrauma    = "trauma"
	EmergencyTypePoisoning = "poisoning"
	EmergencyTypeBurn      = "burn"
	EmergencyTypeSeizure   = "seizure"
	EmergencyTypeOther     = "other"
)

// emergencyTransitions maps each status to the statuses reachable from it.
// Cancellation is reachable from every non-terminal state. The en-route
// states are optional informational hops emitted by driver location updates.
var emergencyTransitions = map[string][]string{
	EmergencyStatusTriggered:         {EmergencyStatusAmbulanceAssigned, EmergencyStatusCancelled},
	EmergencyStatusAmbulanceAssigned: {EmergencyStatusAmbulanceEnRoute, EmergencyStatusAmbulanceArrived, EmergencyStatusCancelled},
	EmergencyStatusAmbulanceEnRoute:  {EmergencyStatusAmbulanceArrived, EmergencyStatusCancelled},
	EmergencyStatusAmbulanceArrived:  {EmergencyStatusPatientPicked, EmergencyStatusCancelled},
	EmergencyStatusPatientPicked:     {EmergencyStatusEnRouteHospital, EmergencyStatusReachedHospital, EmergencyStatusCancelled},
	EmergencyStatusEnRouteHospital:   {EmergencyStatusReachedHospital, EmergencyStatusCancelled},
	EmergencyStatusReachedHospital:   {EmergencyStatusCompleted, EmergencyStatusCancelled},
	EmergencyStatusCompleted:         {},
	EmergencyStatusCancelled:         {},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to string) bool {
	for _, next := range emergencyTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns every status from which the given status is
// reachable. Used to build conditional-update filters at the storage layer.
func TransitionSources(to string) []string {
	var sources []string
	for from, targets := range emergencyTransitions {
		for _, next := range targets {
			if next == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// IsTerminalStatus reports whether the emergency accepts no further
// transitions.
func IsTerminalStatus(status string) bool {
	return status == EmergencyStatusCompleted || status == EmergencyStatusCancelled
}

// ActiveEmergencyStatuses lists every non-terminal status.
func ActiveEmergencyStatuses() []string {
	return []string{
		EmergencyStatusTriggered,
		EmergencyStatusAmbulanceAssigned,
		EmergencyStatusAmbulanceEnRoute,
		EmergencyStatusAmbulanceArrived,
		EmergencyStatusPatientPicked,
		EmergencyStatusEnRouteHospital,
		EmergencyStatusReachedHospital,
	}
}

// EmergencyUpdate describes a conditional status transition applied by the
// emergency store in a single atomic write.
type EmergencyUpdate struct {
	NewStatus   string
	Message     string
	AllowedFrom []string
	Ambulance   *AssignedAmbulance
	Hospital    *AssignedHospital
}

type AssignedAmbulance struct {
	AmbulanceID string
	Details     AmbulanceRef
}

type AssignedHospital struct {
	HospitalID           string
	Details              HospitalRef
	EstimatedArrivalMins int
}

// =================== REQUEST MODELS ===================

type TriggerEmergencyRequest struct {
	Location      EmergencyLocation `json:"location" validate:"required"`
	EmergencyType string            `json:"emergencyType" validate:"omitempty,oneof=cardiac stroke accident pregnancy breathing trauma poisoning burn seizure other"`
	Symptoms      []string          `json:"symptoms,omitempty"`
	Vitals        *VitalsReading    `json:"vitals,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	IsOfflineMode bool              `json:"isOfflineMode"`
}

type UpdateEmergencyStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Message string `json:"message,omitempty"`
}

type CancelEmergencyRequest struct {
	Reason string `json:"reason,omitempty"`
}

type MilestoneRequest struct {
	AmbulanceID string `json:"ambulanceId" validate:"required"`
}
