package models

import (
	"time"
)

// VitalsReading is a point-in-time measurement set, recorded on the
// emergency at trigger time when the client supplies one.
type VitalsReading struct {
	BloodPressure    *BloodPressure `json:"bloodPressure,omitempty" bson:"bloodPressure,omitempty"`
	HeartRate        int            `json:"heartRate,omitempty" bson:"heartRate,omitempty"`
	BloodSugar       float64        `json:"bloodSugar,omitempty" bson:"bloodSugar,omitempty"`
	OxygenSaturation float64        `json:"oxygenSaturation,omitempty" bson:"oxygenSaturation,omitempty"`
	Temperature      float64        `json:"temperature,omitempty" bson:"temperature,omitempty"`
	RecordedAt       time.Time      `json:"recordedAt" bson:"recordedAt"`
}

type BloodPressure struct {
	Systolic  int `json:"systolic" bson:"systolic"`
	Diastolic int `json:"diastolic" bson:"diastolic"`
}

// RiskAssessment is the output of vitals analysis.
type RiskAssessment struct {
	RiskLevel       string   `json:"riskLevel"`
	Predictions     []string `json:"predictions"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
}

// Risk level constants
const (
	RiskLevelNormal   = "normal"
	RiskLevelWarning  = "warning"
	RiskLevelCritical = "critical"
)
