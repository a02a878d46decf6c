package services

import (
	"lifeline/models"
)

// VitalsAnalyzer grades a vitals reading. The production implementation is
// rule-based; an external model can replace it behind the same interface.
type VitalsAnalyzer interface {
	AnalyzeVitals(reading *models.VitalsReading) models.RiskAssessment
}

// VitalsService applies clinical threshold rules to a reading. Each vital
// contributes an alert at warning or critical level; the overall risk is
// the worst alert seen.
type VitalsService struct{}

func NewVitalsService() *VitalsService {
	return &VitalsService{}
}

type vitalsAlert struct {
	level   string
	message string
}

func (vs *VitalsService) AnalyzeVitals(reading *models.VitalsReading) models.RiskAssessment {
	if reading == nil {
		return models.RiskAssessment{
			RiskLevel:  models.RiskLevelNormal,
			Confidence: 0,
		}
	}

	alerts := collectAlerts(reading)

	riskLevel := models.RiskLevelNormal
	for _, alert := range alerts {
		if alert.level == models.RiskLevelCritical {
			riskLevel = models.RiskLevelCritical
			break
		}
		riskLevel = models.RiskLevelWarning
	}

	predictions := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		predictions = append(predictions, alert.message)
	}

	return models.RiskAssessment{
		RiskLevel:       riskLevel,
		Predictions:     predictions,
		Recommendations: recommendations(reading, riskLevel),
		Confidence:      0.7,
	}
}

func collectAlerts(reading *models.VitalsReading) []vitalsAlert {
	var alerts []vitalsAlert

	if bp := reading.BloodPressure; bp != nil && bp.Systolic > 0 {
		if bp.Systolic > 140 || bp.Systolic < 90 {
			level := models.RiskLevelWarning
			if bp.Systolic > 180 {
				level = models.RiskLevelCritical
			}
			alerts = append(alerts, vitalsAlert{level, "Abnormal blood pressure detected"})
		}
	}

	if hr := reading.HeartRate; hr > 0 {
		if hr > 100 || hr < 60 {
			level := models.RiskLevelWarning
			if hr > 120 {
				level = models.RiskLevelCritical
			}
			alerts = append(alerts, vitalsAlert{level, "Abnormal heart rate detected"})
		}
	}

	if bs := reading.BloodSugar; bs > 0 {
		if bs > 200 || bs < 70 {
			level := models.RiskLevelWarning
			if bs > 300 || bs < 50 {
				level = models.RiskLevelCritical
			}
			alerts = append(alerts, vitalsAlert{level, "Abnormal blood sugar detected"})
		}
	}

	if o2 := reading.OxygenSaturation; o2 > 0 && o2 < 95 {
		level := models.RiskLevelWarning
		if o2 < 90 {
			level = models.RiskLevelCritical
		}
		alerts = append(alerts, vitalsAlert{level, "Low oxygen saturation detected"})
	}

	return alerts
}

func recommendations(reading *models.VitalsReading, riskLevel string) []string {
	var recs []string

	if riskLevel == models.RiskLevelCritical {
		recs = append(recs, "Seek immediate medical attention")
	}
	if bp := reading.BloodPressure; bp != nil && bp.Systolic > 140 {
		recs = append(recs, "Monitor blood pressure regularly")
	}
	if reading.HeartRate > 100 {
		recs = append(recs, "Rest and avoid strenuous activity")
	}
	if reading.BloodSugar > 200 {
		recs = append(recs, "Check blood sugar levels frequently")
	} else if reading.BloodSugar > 0 && reading.BloodSugar < 70 {
		recs = append(recs, "Consume quick-acting carbohydrates")
	}
	if reading.OxygenSaturation > 0 && reading.OxygenSaturation < 95 {
		recs = append(recs, "Ensure proper ventilation")
	}
	if riskLevel == models.RiskLevelNormal {
		recs = append(recs, "Continue regular monitoring")
	}

	return recs
}
