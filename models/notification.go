package models

import (
	"time"
)

// Notification is the persisted record of one delivery attempt batch.
type Notification struct {
	ID          string            `json:"id" bson:"_id"`
	UserID      string            `json:"userId,omitempty" bson:"userId,omitempty"`
	EmergencyID string            `json:"emergencyId,omitempty" bson:"emergencyId,omitempty"`
	Type        string            `json:"type" bson:"type"`
	Title       string            `json:"title" bson:"title"`
	Message     string            `json:"message" bson:"message"`
	Data        map[string]string `json:"data,omitempty" bson:"data,omitempty"`
	Channel     string            `json:"channel" bson:"channel"`
	Recipient   string            `json:"recipient" bson:"recipient"`
	Status      string            `json:"status" bson:"status"`
	Error       string            `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
}

// Notification type constants
const (
	NotificationEmergencyTriggered = "emergency_triggered"
	NotificationAmbulanceAssigned  = "ambulance_assigned"
	NotificationAmbulanceArrived   = "ambulance_arrived"
	NotificationHospitalReached    = "hospital_reached"
	NotificationHotlineFallback    = "hotline_fallback"
	NotificationVitalsAlert        = "vitals_alert"
	NotificationBloodRequest       = "blood_request"
	NotificationInsuranceUpdate    = "insurance_update"
)

// Channel constants
const (
	ChannelPush = "push"
	ChannelSMS  = "sms"
)

// Delivery status constants
const (
	DeliveryStatusSent    = "sent"
	DeliveryStatusFailed  = "failed"
	DeliveryStatusSkipped = "skipped"
)

// NotificationPayload carries the content for one fan-out round.
type NotificationPayload struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	SMSText string            `json:"smsText"`
	Data    map[string]string `json:"data,omitempty"`
}

// NotificationTarget is one independent recipient in a fan-out round.
// Push is attempted first when a device token is present, SMS second.
type NotificationTarget struct {
	Kind        string `json:"kind"`
	Name        string `json:"name,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DeviceToken string `json:"deviceToken,omitempty"`
}

// Target kind constants
const (
	TargetPatient   = "patient"
	TargetContact   = "contact"
	TargetHospital  = "hospital"
	TargetBloodBank = "blood_bank"
	TargetHotline   = "hotline"
)

// DispatchResult is the per-target outcome of a fan-out. Failures are
// reported here for logging, never raised as errors to the caller.
type DispatchResult struct {
	Target    NotificationTarget `json:"target"`
	Channel   string             `json:"channel"`
	Success   bool               `json:"success"`
	Skipped   bool               `json:"skipped"`
	MessageID string             `json:"messageId,omitempty"`
	Error     string             `json:"error,omitempty"`
}
