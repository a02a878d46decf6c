package services

import (
	"context"
	"errors"
	"fmt"

	"lifeline/config"
	"lifeline/models"
	"lifeline/utils"
	"lifeline/workers"

	"github.com/sirupsen/logrus"
)

// AmbulanceStore is the registry surface the orchestrator claims fleet
// resources through.
type AmbulanceStore interface {
	GetByID(ctx context.Context, id string) (*models.Ambulance, error)
	ListAvailable(ctx context.Context) ([]models.Ambulance, error)
	Claim(ctx context.Context, ambulanceID, emergencyID string) (*models.Ambulance, error)
	Release(ctx context.Context, ambulanceID string) error
	UpdateStatus(ctx context.Context, ambulanceID, emergencyID, status string) error
}

// HospitalStore is the registry surface for bed reservations.
type HospitalStore interface {
	GetByID(ctx context.Context, id string) (*models.Hospital, error)
	ListActive(ctx context.Context) ([]models.Hospital, error)
	ReserveBed(ctx context.Context, hospitalID, bedType string) error
	ReleaseBed(ctx context.Context, hospitalID, bedType string) error
}

// Notifier fans a payload out to independent targets, best effort.
type Notifier interface {
	Fanout(ctx context.Context, emergencyID string, payload models.NotificationPayload, targets []models.NotificationTarget) []models.DispatchResult
}

// InsuranceVerifier resolves a patient's coverage into a snapshot.
type InsuranceVerifier interface {
	Verify(ctx context.Context, userID string) (models.InsuranceSnapshot, *models.VerificationResult, error)
}

// TaskQueue accepts background tasks for the post-trigger fan-out.
type TaskQueue interface {
	Submit(task workers.Task) bool
}

// DispatchService composes proximity ranking, the resource registry and the
// emergency ledger into the trigger, assign, track, complete workflow.
// Claims are taken through atomic conditional updates and are never held
// across a collaborator call.
type DispatchService struct {
	ledger     *EmergencyService
	ambulances AmbulanceStore
	hospitals  HospitalStore
	notifier   Notifier
	insurance  InsuranceVerifier
	geocoder   Geocoder
	planner    RoutePlanner
	queue      TaskQueue

	ambulanceRadiusKm float64
	hospitalRadiusKm  float64
	hotlineNumber     string
}

func NewDispatchService(
	ledger *EmergencyService,
	ambulances AmbulanceStore,
	hospitals HospitalStore,
	notifier Notifier,
	insurance InsuranceVerifier,
	geocoder Geocoder,
	planner RoutePlanner,
	queue TaskQueue,
	cfg *config.Config,
) *DispatchService {
	return &DispatchService{
		ledger:            ledger,
		ambulances:        ambulances,
		hospitals:         hospitals,
		notifier:          notifier,
		insurance:         insurance,
		geocoder:          geocoder,
		planner:           planner,
		queue:             queue,
		ambulanceRadiusKm: cfg.AmbulanceSearchRadius,
		hospitalRadiusKm:  cfg.HospitalSearchRadius,
		hotlineNumber:     cfg.HotlineNumber,
	}
}

// Trigger opens the emergency and schedules the three independent follow-up
// tasks: ambulance assignment, insurance verification and hospital
// pre-alert, plus the contact alert round. The trigger itself returns as
// soon as the emergency is persisted; none of the tasks block it or each
// other.
func (ds *DispatchService) Trigger(ctx context.Context, userID string, patient models.PatientSnapshot, req *models.TriggerEmergencyRequest) (*models.Emergency, error) {
	emergency, err := ds.ledger.Create(ctx, userID, patient, req)
	if err != nil {
		return nil, err
	}

	id := emergency.ID
	ds.submit("assign-ambulance/"+id, func(taskCtx context.Context) error {
		_, taskErr := ds.AssignNearestAmbulance(taskCtx, id)
		return taskErr
	})
	ds.submit("verify-insurance/"+id, func(taskCtx context.Context) error {
		return ds.VerifyInsurance(taskCtx, id)
	})
	ds.submit("prealert-hospital/"+id, func(taskCtx context.Context) error {
		_, taskErr := ds.PreAlertHospital(taskCtx, id)
		return taskErr
	})
	ds.submit("notify-contacts/"+id, func(taskCtx context.Context) error {
		return ds.NotifyContacts(taskCtx, id)
	})

	return emergency, nil
}

func (ds *DispatchService) submit(name string, run func(ctx context.Context) error) {
	if ds.queue == nil {
		return
	}
	if !ds.queue.Submit(workers.Task{Name: name, Run: run}) {
		logrus.Errorf("Dispatch queue rejected task %s", name)
	}
}

// AssignNearestAmbulance ranks available ambulances by distance and walks
// the list claiming the nearest first. Losing a claim race moves on to the
// next candidate. An empty or exhausted list falls back to the public
// hotline, which is a successful degraded outcome: the emergency stays
// triggered and a timeline note records the handoff.
func (ds *DispatchService) AssignNearestAmbulance(ctx context.Context, emergencyID string) (*models.DispatchOutcome, error) {
	emergency, err := ds.ledger.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	if emergency.Status != models.EmergencyStatusTriggered {
		if emergency.AmbulanceID != "" {
			return &models.DispatchOutcome{
				Assigned: true,
				Message:  "ambulance already assigned",
			}, nil
		}
		return nil, utils.NewInvalidTransitionError(emergency.Status, models.EmergencyStatusAmbulanceAssigned)
	}

	available, err := ds.ambulances.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	origin := utils.Coordinate{
		Latitude:  emergency.Location.Latitude,
		Longitude: emergency.Location.Longitude,
	}
	ranked := utils.RankByDistance(origin, available, ds.ambulanceRadiusKm)
	// Second tier: the outer ring up to doubled radius, tried only after
	// every nearby candidate.
	for _, candidate := range utils.RankByDistance(origin, available, ds.ambulanceRadiusKm*2) {
		if candidate.Distance > ds.ambulanceRadiusKm {
			ranked = append(ranked, candidate)
		}
	}

	seen := 0
	for _, candidate := range ranked {
		seen++

		claimed, claimErr := ds.ambulances.Claim(ctx, candidate.Item.ID, emergencyID)
		if claimErr != nil {
			if errors.Is(claimErr, utils.ErrAlreadyClaimed) || utils.IsNotFound(claimErr) {
				continue
			}
			return nil, claimErr
		}

		updated, assignErr := ds.ledger.AssignAmbulance(ctx, emergencyID, claimed)
		if assignErr != nil {
			// The emergency was cancelled while this task was in flight.
			// Undo the claim immediately so the ambulance never dangles.
			if relErr := ds.ambulances.Release(ctx, claimed.ID); relErr != nil {
				logrus.Errorf("Failed to release ambulance %s after lost assignment: %v", claimed.ID, relErr)
			}
			return nil, assignErr
		}

		eta := EstimateRoute(ctx, ds.planner,
			claimed.Location.Latitude, claimed.Location.Longitude,
			emergency.Location.Latitude, emergency.Location.Longitude)
		if err := ds.ledger.store.SetEstimatedArrival(ctx, emergencyID, eta.DurationMinutes); err != nil {
			logrus.Warnf("Failed to record ETA for emergency %s: %v", emergencyID, err)
		}

		ds.notifyAmbulanceAssigned(ctx, updated, claimed, eta)

		logrus.WithFields(logrus.Fields{
			"emergencyId": emergencyID,
			"ambulanceId": claimed.ID,
			"distance":    candidate.Distance,
			"etaMinutes":  eta.DurationMinutes,
		}).Info("Ambulance assigned")

		return &models.DispatchOutcome{
			Assigned:       true,
			Message:        fmt.Sprintf("Ambulance %s assigned", claimed.VehicleNumber),
			Ambulance:      claimed,
			ETA:            eta,
			CandidatesSeen: seen,
		}, nil
	}

	return ds.hotlineFallback(ctx, emergency, seen)
}

// hotlineFallback notifies the public 108 service when no private ambulance
// could be engaged. The emergency remains triggered, open for a later
// manual assignment.
func (ds *DispatchService) hotlineFallback(ctx context.Context, emergency *models.Emergency, candidatesSeen int) (*models.DispatchOutcome, error) {
	address := emergency.Location.Address
	if address == "" {
		address = ResolveAddress(ctx, ds.geocoder, emergency.Location.Latitude, emergency.Location.Longitude)
	}

	summary := fmt.Sprintf(
		"EMERGENCY ALERT\nLocation: %s\nPatient: %s, Age: %d\nCondition: %s\nContact: %s\nEmergency ID: %s",
		address,
		emergency.Patient.Name, emergency.Patient.Age,
		emergency.Type,
		emergency.Patient.PhoneNumber,
		emergency.ID,
	)

	if ds.notifier != nil {
		ds.notifier.Fanout(ctx, emergency.ID, models.NotificationPayload{
			Type:    models.NotificationHotlineFallback,
			Title:   "Emergency hotline notified",
			Body:    summary,
			SMSText: summary,
		}, []models.NotificationTarget{
			{Kind: models.TargetHotline, Name: "108", Phone: ds.hotlineNumber},
			{
				Kind:        models.TargetPatient,
				Name:        emergency.Patient.Name,
				UserID:      emergency.UserID,
				Phone:       emergency.Patient.PhoneNumber,
				DeviceToken: emergency.Patient.DeviceToken,
			},
		})
	}

	if err := ds.ledger.store.AppendNote(ctx, emergency.ID, "No ambulances available nearby. 108 has been notified."); err != nil {
		logrus.Warnf("Failed to record hotline note for emergency %s: %v", emergency.ID, err)
	}

	logrus.WithField("emergencyId", emergency.ID).Warn("No ambulance available, fell back to 108 hotline")

	return &models.DispatchOutcome{
		Assigned:       false,
		Degraded:       true,
		Message:        "No ambulances available nearby. 108 has been notified.",
		CandidatesSeen: candidatesSeen,
	}, nil
}

func (ds *DispatchService) notifyAmbulanceAssigned(ctx context.Context, emergency *models.Emergency, ambulance *models.Ambulance, eta *models.RouteEstimate) {
	if ds.notifier == nil {
		return
	}

	sent, err := ds.ledger.store.MarkAlertSent(ctx, emergency.ID, models.AlertAmbulance)
	if err != nil || !sent {
		if err != nil {
			logrus.Warnf("Failed to mark ambulance alert for emergency %s: %v", emergency.ID, err)
		}
		return
	}

	body := fmt.Sprintf("Ambulance %s is on the way. Driver %s (%s). ETA %d minutes.",
		ambulance.VehicleNumber, ambulance.Driver.Name, ambulance.Driver.Phone, eta.DurationMinutes)

	ds.notifier.Fanout(ctx, emergency.ID, models.NotificationPayload{
		Type:    models.NotificationAmbulanceAssigned,
		Title:   "Ambulance assigned",
		Body:    body,
		SMSText: body,
		Data: map[string]string{
			"emergencyId": emergency.ID,
			"ambulanceId": ambulance.ID,
		},
	}, []models.NotificationTarget{{
		Kind:        models.TargetPatient,
		Name:        emergency.Patient.Name,
		UserID:      emergency.UserID,
		Phone:       emergency.Patient.PhoneNumber,
		DeviceToken: emergency.Patient.DeviceToken,
	}})
}

// NotifyContacts sends the trigger alert to the patient's emergency
// contacts exactly once, guarded by the write-once contacts flag.
func (ds *DispatchService) NotifyContacts(ctx context.Context, emergencyID string) error {
	emergency, err := ds.ledger.GetByID(ctx, emergencyID)
	if err != nil {
		return err
	}
	if len(emergency.Patient.Contacts) == 0 || ds.notifier == nil {
		return nil
	}

	sent, err := ds.ledger.store.MarkAlertSent(ctx, emergencyID, models.AlertContacts)
	if err != nil {
		return err
	}
	if !sent {
		return nil
	}

	address := emergency.Location.Address
	if address == "" {
		address = ResolveAddress(ctx, ds.geocoder, emergency.Location.Latitude, emergency.Location.Longitude)
	}

	body := fmt.Sprintf("%s has triggered a medical emergency (%s) at %s. Contact: %s",
		emergency.Patient.Name, emergency.Type, address, emergency.Patient.PhoneNumber)

	targets := make([]models.NotificationTarget, 0, len(emergency.Patient.Contacts))
	for _, contact := range emergency.Patient.Contacts {
		targets = append(targets, models.NotificationTarget{
			Kind:  models.TargetContact,
			Name:  contact.Name,
			Phone: contact.Phone,
		})
	}

	ds.notifier.Fanout(ctx, emergencyID, models.NotificationPayload{
		Type:    models.NotificationEmergencyTriggered,
		Title:   "Emergency alert",
		Body:    body,
		SMSText: body,
		Data:    map[string]string{"emergencyId": emergencyID},
	}, targets)

	return nil
}

// VerifyInsurance resolves the patient's coverage and stamps the snapshot
// onto the emergency. Verification failures degrade to a no-insurance
// snapshot; dispatch never depends on this task.
func (ds *DispatchService) VerifyInsurance(ctx context.Context, emergencyID string) error {
	emergency, err := ds.ledger.GetByID(ctx, emergencyID)
	if err != nil {
		return err
	}
	if ds.insurance == nil {
		return nil
	}

	snapshot, result, err := ds.insurance.Verify(ctx, emergency.UserID)
	if err != nil {
		return err
	}
	if result != nil && result.Verified {
		snapshot.PreApprovalSent = true
	}

	if err := ds.ledger.store.SetInsurance(ctx, emergencyID, snapshot); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"emergencyId": emergencyID,
		"status":      snapshot.Status,
	}).Info("Insurance verification recorded")

	return nil
}

// PreAlertHospital selects the destination hospital: nearest active
// hospital with a free bed of the type the emergency admits into, filtered
// to the patient's insurance network when coverage is known. A first pass
// at the standard radius applies all filters; when it comes up empty the
// search doubles the radius and drops the insurance and facility filters.
func (ds *DispatchService) PreAlertHospital(ctx context.Context, emergencyID string) (*models.DispatchOutcome, error) {
	emergency, err := ds.ledger.GetByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalStatus(emergency.Status) {
		return nil, utils.NewConflictError("emergency is no longer active")
	}
	if emergency.HospitalID != "" {
		return &models.DispatchOutcome{
			Assigned: true,
			Message:  "hospital already assigned",
		}, nil
	}

	hospitals, err := ds.hospitals.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	bedType := models.BedTypeForEmergency(emergency.Type)
	origin := utils.Coordinate{
		Latitude:  emergency.Location.Latitude,
		Longitude: emergency.Location.Longitude,
	}

	strict := filterHospitals(hospitals, bedType, emergency.Insurance, true)
	outcome, err := ds.tryHospitals(ctx, emergency, bedType, utils.RankByDistance(origin, strict, ds.hospitalRadiusKm))
	if err != nil || outcome != nil {
		return outcome, err
	}

	// Second tier: doubled radius, filters relaxed.
	relaxed := filterHospitals(hospitals, bedType, emergency.Insurance, false)
	outcome, err = ds.tryHospitals(ctx, emergency, bedType, utils.RankByDistance(origin, relaxed, ds.hospitalRadiusKm*2))
	if err != nil || outcome != nil {
		return outcome, err
	}

	if err := ds.ledger.store.AppendNote(ctx, emergencyID, "No hospital with free beds found nearby"); err != nil {
		logrus.Warnf("Failed to record hospital note for emergency %s: %v", emergencyID, err)
	}

	logrus.WithField("emergencyId", emergencyID).Warn("No hospital could be pre-alerted")

	return &models.DispatchOutcome{
		Assigned: false,
		Degraded: true,
		Message:  "No hospital with free beds found nearby",
	}, nil
}

// filterHospitals applies the eligibility predicates ahead of proximity
// ranking. Strict mode requires the ward facility and, when the patient's
// provider is known, membership in the hospital's insurance network.
func filterHospitals(hospitals []models.Hospital, bedType string, insurance models.InsuranceSnapshot, strict bool) []models.Hospital {
	eligible := make([]models.Hospital, 0, len(hospitals))
	for _, hospital := range hospitals {
		if !hospital.IsActive {
			continue
		}
		if strict {
			if bedType == models.BedTypeICU && !hospital.Facilities.ICU {
				continue
			}
			if bedType == models.BedTypeEmergency && !hospital.Facilities.EmergencyWard {
				continue
			}
			if insurance.HasInsurance && insurance.Provider != "" && insurance.Provider != models.InsuranceProviderNone {
				if !acceptsProvider(hospital.InsuranceAccepted, insurance.Provider) {
					continue
				}
			}
		}
		eligible = append(eligible, hospital)
	}
	return eligible
}

func acceptsProvider(accepted []string, provider string) bool {
	for _, p := range accepted {
		if p == provider {
			return true
		}
	}
	return false
}

func (ds *DispatchService) tryHospitals(ctx context.Context, emergency *models.Emergency, bedType string, ranked []utils.Ranked[models.Hospital]) (*models.DispatchOutcome, error) {
	for _, candidate := range ranked {
		reserveErr := ds.hospitals.ReserveBed(ctx, candidate.Item.ID, bedType)
		if reserveErr != nil {
			if errors.Is(reserveErr, utils.ErrNoBedsAvailable) || utils.IsNotFound(reserveErr) {
				continue
			}
			return nil, reserveErr
		}

		hospital := candidate.Item
		eta := EstimateRoute(ctx, ds.planner,
			emergency.Location.Latitude, emergency.Location.Longitude,
			hospital.Location.Latitude, hospital.Location.Longitude)

		if err := ds.ledger.AssignHospital(ctx, emergency.ID, &hospital, candidate.Distance, eta.DurationMinutes); err != nil {
			// Cancelled mid-flight, or another pre-alert won. Hand the
			// bed back either way.
			if relErr := ds.hospitals.ReleaseBed(ctx, hospital.ID, bedType); relErr != nil {
				logrus.Errorf("Failed to release bed at %s after lost assignment: %v", hospital.ID, relErr)
			}
			return nil, err
		}

		ds.notifyHospital(ctx, emergency, &hospital, eta)

		logrus.WithFields(logrus.Fields{
			"emergencyId": emergency.ID,
			"hospitalId":  hospital.ID,
			"bedType":     bedType,
			"distance":    candidate.Distance,
		}).Info("Hospital pre-alerted")

		return &models.DispatchOutcome{
			Assigned: true,
			Message:  fmt.Sprintf("Hospital %s pre-alerted", hospital.Name),
			Hospital: &hospital,
			ETA:      eta,
		}, nil
	}

	return nil, nil
}

func (ds *DispatchService) notifyHospital(ctx context.Context, emergency *models.Emergency, hospital *models.Hospital, eta *models.RouteEstimate) {
	if ds.notifier == nil {
		return
	}

	sent, err := ds.ledger.store.MarkAlertSent(ctx, emergency.ID, models.AlertHospital)
	if err != nil || !sent {
		if err != nil {
			logrus.Warnf("Failed to mark hospital alert for emergency %s: %v", emergency.ID, err)
		}
		return
	}

	body := fmt.Sprintf(
		"INCOMING EMERGENCY\nPatient: %s, Age: %d, Blood group: %s\nCondition: %s\nETA: %d minutes\nEmergency ID: %s",
		emergency.Patient.Name, emergency.Patient.Age, emergency.Patient.BloodGroup,
		emergency.Type, eta.DurationMinutes, emergency.ID,
	)

	ds.notifier.Fanout(ctx, emergency.ID, models.NotificationPayload{
		Type:    models.NotificationEmergencyTriggered,
		Title:   "Incoming emergency",
		Body:    body,
		SMSText: body,
		Data:    map[string]string{"emergencyId": emergency.ID},
	}, []models.NotificationTarget{{
		Kind:  models.TargetHospital,
		Name:  hospital.Name,
		Phone: hospital.Contact.EmergencyPhone,
	}})
}

// MarkEnRoute is the driver's informational hop after accepting the ride.
func (ds *DispatchService) MarkEnRoute(ctx context.Context, emergencyID, ambulanceID string) (*models.Emergency, error) {
	if err := ds.verifyOwnership(ctx, emergencyID, ambulanceID); err != nil {
		return nil, err
	}

	emergency, err := ds.ledger.Transition(ctx, emergencyID, models.EmergencyStatusAmbulanceEnRoute, "Ambulance en route to patient")
	if err != nil {
		return nil, err
	}

	if err := ds.ambulances.UpdateStatus(ctx, ambulanceID, emergencyID, models.AmbulanceStatusEnRoute); err != nil {
		logrus.Warnf("Failed to update ambulance %s status: %v", ambulanceID, err)
	}

	return emergency, nil
}

// MarkArrived records the ambulance reaching the patient and notifies the
// patient.
func (ds *DispatchService) MarkArrived(ctx context.Context, emergencyID, ambulanceID string) (*models.Emergency, error) {
	if err := ds.verifyOwnership(ctx, emergencyID, ambulanceID); err != nil {
		return nil, err
	}

	emergency, err := ds.ledger.Transition(ctx, emergencyID, models.EmergencyStatusAmbulanceArrived, "Ambulance arrived at patient location")
	if err != nil {
		return nil, err
	}

	if err := ds.ambulances.UpdateStatus(ctx, ambulanceID, emergencyID, models.AmbulanceStatusArrived); err != nil {
		logrus.Warnf("Failed to update ambulance %s status: %v", ambulanceID, err)
	}

	if ds.notifier != nil {
		body := "Your ambulance has arrived."
		ds.notifier.Fanout(ctx, emergencyID, models.NotificationPayload{
			Type:    models.NotificationAmbulanceArrived,
			Title:   "Ambulance arrived",
			Body:    body,
			SMSText: body,
			Data:    map[string]string{"emergencyId": emergencyID},
		}, []models.NotificationTarget{{
			Kind:        models.TargetPatient,
			Name:        emergency.Patient.Name,
			UserID:      emergency.UserID,
			Phone:       emergency.Patient.PhoneNumber,
			DeviceToken: emergency.Patient.DeviceToken,
		}})
	}

	return emergency, nil
}

// MarkPatientPicked records pickup and flips the ambulance to transporting.
func (ds *DispatchService) MarkPatientPicked(ctx context.Context, emergencyID, ambulanceID string) (*models.Emergency, error) {
	if err := ds.verifyOwnership(ctx, emergencyID, ambulanceID); err != nil {
		return nil, err
	}

	emergency, err := ds.ledger.Transition(ctx, emergencyID, models.EmergencyStatusPatientPicked, "Patient picked up")
	if err != nil {
		return nil, err
	}

	if err := ds.ambulances.UpdateStatus(ctx, ambulanceID, emergencyID, models.AmbulanceStatusTransporting); err != nil {
		logrus.Warnf("Failed to update ambulance %s status: %v", ambulanceID, err)
	}

	return emergency, nil
}

// MarkEnRouteHospital is the optional informational hop during transport.
func (ds *DispatchService) MarkEnRouteHospital(ctx context.Context, emergencyID, ambulanceID string) (*models.Emergency, error) {
	if err := ds.verifyOwnership(ctx, emergencyID, ambulanceID); err != nil {
		return nil, err
	}

	return ds.ledger.Transition(ctx, emergencyID, models.EmergencyStatusEnRouteHospital, "En route to hospital")
}

// MarkReachedHospital records handover at the hospital. The ambulance stays
// owned by the emergency until completion.
func (ds *DispatchService) MarkReachedHospital(ctx context.Context, emergencyID, ambulanceID string) (*models.Emergency, error) {
	if err := ds.verifyOwnership(ctx, emergencyID, ambulanceID); err != nil {
		return nil, err
	}

	emergency, err := ds.ledger.Transition(ctx, emergencyID, models.EmergencyStatusReachedHospital, "Reached hospital")
	if err != nil {
		return nil, err
	}

	if ds.notifier != nil && len(emergency.Patient.Contacts) > 0 {
		hospitalName := "hospital"
		if emergency.HospitalDetails != nil {
			hospitalName = emergency.HospitalDetails.Name
		}
		body := fmt.Sprintf("%s has reached %s.", emergency.Patient.Name, hospitalName)

		targets := make([]models.NotificationTarget, 0, len(emergency.Patient.Contacts))
		for _, contact := range emergency.Patient.Contacts {
			targets = append(targets, models.NotificationTarget{
				Kind:  models.TargetContact,
				Name:  contact.Name,
				Phone: contact.Phone,
			})
		}

		ds.notifier.Fanout(ctx, emergencyID, models.NotificationPayload{
			Type:    models.NotificationHospitalReached,
			Title:   "Reached hospital",
			Body:    body,
			SMSText: body,
			Data:    map[string]string{"emergencyId": emergencyID},
		}, targets)
	}

	return emergency, nil
}

// CompleteRide closes the emergency and releases the ambulance. This is the
// only milestone that releases; the ambulance is exclusively owned from
// claim to completion.
func (ds *DispatchService) CompleteRide(ctx context.Context, emergencyID, ambulanceID string) (*models.Emergency, error) {
	if err := ds.verifyOwnership(ctx, emergencyID, ambulanceID); err != nil {
		return nil, err
	}

	emergency, err := ds.ledger.Transition(ctx, emergencyID, models.EmergencyStatusCompleted, "Emergency completed")
	if err != nil {
		return nil, err
	}

	if err := ds.ambulances.Release(ctx, ambulanceID); err != nil {
		logrus.Errorf("Failed to release ambulance %s after completion: %v", ambulanceID, err)
	}

	logrus.WithFields(logrus.Fields{
		"emergencyId": emergencyID,
		"ambulanceId": ambulanceID,
	}).Info("Emergency completed")

	return emergency, nil
}

// CancelEmergency closes the emergency from any active status and
// immediately returns any claimed resources to their pools.
func (ds *DispatchService) CancelEmergency(ctx context.Context, emergencyID, reason string) (*models.Emergency, error) {
	emergency, err := ds.ledger.Cancel(ctx, emergencyID, reason)
	if err != nil {
		return nil, err
	}

	if emergency.AmbulanceID != "" {
		if relErr := ds.ambulances.Release(ctx, emergency.AmbulanceID); relErr != nil {
			logrus.Errorf("Failed to release ambulance %s after cancellation: %v", emergency.AmbulanceID, relErr)
		}
	}
	if emergency.HospitalID != "" {
		bedType := models.BedTypeForEmergency(emergency.Type)
		if relErr := ds.hospitals.ReleaseBed(ctx, emergency.HospitalID, bedType); relErr != nil {
			logrus.Errorf("Failed to release bed at %s after cancellation: %v", emergency.HospitalID, relErr)
		}
	}

	logrus.WithFields(logrus.Fields{
		"emergencyId": emergencyID,
		"reason":      reason,
	}).Info("Emergency cancelled")

	return emergency, nil
}

// verifyOwnership rejects milestone reports from any ambulance other than
// the one assigned to the emergency.
func (ds *DispatchService) verifyOwnership(ctx context.Context, emergencyID, ambulanceID string) error {
	emergency, err := ds.ledger.GetByID(ctx, emergencyID)
	if err != nil {
		return err
	}
	if emergency.AmbulanceID == "" {
		return utils.NewConflictError("no ambulance assigned to this emergency")
	}
	if emergency.AmbulanceID != ambulanceID {
		return utils.NewForbiddenError("ambulance is not assigned to this emergency")
	}
	return nil
}
