package services

import (
	"context"
	"sync"
	"time"

	"lifeline/models"
	"lifeline/utils"
	"lifeline/workers"
)

// In-memory stores for service tests. Each mirrors the conditional-write
// semantics of its MongoDB counterpart under a mutex, so claim races and
// state-machine guards behave the same way they do in production.

type fakeEmergencyStore struct {
	mu          sync.Mutex
	emergencies map[string]*models.Emergency
	lastLimit   int64
}

func newFakeEmergencyStore() *fakeEmergencyStore {
	return &fakeEmergencyStore{emergencies: make(map[string]*models.Emergency)}
}

func (s *fakeEmergencyStore) Create(ctx context.Context, emergency *models.Emergency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *emergency
	emergency.CreatedAt = time.Now()
	copied.CreatedAt = emergency.CreatedAt
	s.emergencies[emergency.ID] = &copied
	return nil
}

func (s *fakeEmergencyStore) GetByID(ctx context.Context, id string) (*models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[id]
	if !ok {
		return nil, utils.NewEmergencyNotFoundError()
	}
	copied := *emergency
	return &copied, nil
}

func (s *fakeEmergencyStore) Transition(ctx context.Context, id string, update models.EmergencyUpdate) (*models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[id]
	if !ok {
		return nil, utils.NewEmergencyNotFoundError()
	}

	allowed := false
	for _, from := range update.AllowedFrom {
		if emergency.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, utils.NewInvalidTransitionError(emergency.Status, update.NewStatus)
	}

	emergency.Status = update.NewStatus
	emergency.UpdatedAt = time.Now()
	emergency.Timeline = append(emergency.Timeline, models.TimelineEntry{
		Status:    update.NewStatus,
		Timestamp: time.Now(),
		Message:   update.Message,
	})
	if update.Ambulance != nil {
		emergency.AmbulanceID = update.Ambulance.AmbulanceID
		emergency.AmbulanceDetails = &update.Ambulance.Details
	}
	if update.Hospital != nil {
		emergency.HospitalID = update.Hospital.HospitalID
		emergency.HospitalDetails = &update.Hospital.Details
		emergency.EstimatedArrivalMins = update.Hospital.EstimatedArrivalMins
	}

	copied := *emergency
	return &copied, nil
}

func (s *fakeEmergencyStore) AppendNote(ctx context.Context, id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[id]
	if !ok {
		return utils.NewEmergencyNotFoundError()
	}
	if models.IsTerminalStatus(emergency.Status) {
		return utils.NewConflictError("emergency is no longer active")
	}
	emergency.Timeline = append(emergency.Timeline, models.TimelineEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
	return nil
}

func (s *fakeEmergencyStore) SetHospital(ctx context.Context, id string, hospital models.AssignedHospital, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[id]
	if !ok {
		return utils.NewEmergencyNotFoundError()
	}
	if models.IsTerminalStatus(emergency.Status) {
		return utils.NewConflictError("emergency is no longer active")
	}
	if emergency.HospitalID != "" {
		return utils.NewConflictError("hospital already assigned")
	}
	emergency.HospitalID = hospital.HospitalID
	emergency.HospitalDetails = &hospital.Details
	emergency.EstimatedArrivalMins = hospital.EstimatedArrivalMins
	emergency.Timeline = append(emergency.Timeline, models.TimelineEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
	return nil
}

func (s *fakeEmergencyStore) MarkAlertSent(ctx context.Context, id, flag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[id]
	if !ok {
		return false, utils.NewEmergencyNotFoundError()
	}

	switch flag {
	case models.AlertContacts:
		if emergency.AlertsSent.Contacts {
			return false, nil
		}
		emergency.AlertsSent.Contacts = true
	case models.AlertAmbulance:
		if emergency.AlertsSent.Ambulance {
			return false, nil
		}
		emergency.AlertsSent.Ambulance = true
	case models.AlertHospital:
		if emergency.AlertsSent.Hospital {
			return false, nil
		}
		emergency.AlertsSent.Hospital = true
	case models.AlertBloodBank:
		if emergency.AlertsSent.BloodBank {
			return false, nil
		}
		emergency.AlertsSent.BloodBank = true
	default:
		return false, utils.NewBadRequestError("unknown alert flag: " + flag)
	}
	return true, nil
}

func (s *fakeEmergencyStore) SetInsurance(ctx context.Context, id string, insurance models.InsuranceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[id]
	if !ok {
		return utils.NewEmergencyNotFoundError()
	}
	emergency.Insurance = insurance
	return nil
}

func (s *fakeEmergencyStore) SetEstimatedArrival(ctx context.Context, id string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emergency, ok := s.emergencies[id]
	if !ok {
		return utils.NewEmergencyNotFoundError()
	}
	emergency.EstimatedArrivalMins = minutes
	return nil
}

func (s *fakeEmergencyStore) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	var out []models.Emergency
	for _, e := range s.emergencies {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeEmergencyStore) ListActive(ctx context.Context) ([]models.Emergency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Emergency
	for _, e := range s.emergencies {
		if !models.IsTerminalStatus(e.Status) {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeAmbulanceStore struct {
	mu         sync.Mutex
	ambulances map[string]*models.Ambulance

	// onClaim runs inside a successful claim, before it returns. Tests use
	// it to race a cancellation against an in-flight assignment.
	onClaim func(ambulanceID string)

	// afterList runs once after ListAvailable returns, letting tests slip
	// a competing claim between ranking and claiming.
	afterList func()
}

func newFakeAmbulanceStore(ambulances ...models.Ambulance) *fakeAmbulanceStore {
	store := &fakeAmbulanceStore{ambulances: make(map[string]*models.Ambulance)}
	for i := range ambulances {
		copied := ambulances[i]
		store.ambulances[copied.ID] = &copied
	}
	return store
}

func (s *fakeAmbulanceStore) GetByID(ctx context.Context, id string) (*models.Ambulance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ambulance, ok := s.ambulances[id]
	if !ok {
		return nil, utils.NewAmbulanceNotFoundError()
	}
	copied := *ambulance
	return &copied, nil
}

func (s *fakeAmbulanceStore) ListAvailable(ctx context.Context) ([]models.Ambulance, error) {
	s.mu.Lock()
	var out []models.Ambulance
	for _, a := range s.ambulances {
		if a.Status == models.AmbulanceStatusAvailable && a.IsActive {
			out = append(out, *a)
		}
	}
	hook := s.afterList
	s.afterList = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *fakeAmbulanceStore) Claim(ctx context.Context, ambulanceID, emergencyID string) (*models.Ambulance, error) {
	s.mu.Lock()
	ambulance, ok := s.ambulances[ambulanceID]
	if !ok {
		s.mu.Unlock()
		return nil, utils.NewAmbulanceNotFoundError()
	}
	if ambulance.Status != models.AmbulanceStatusAvailable {
		s.mu.Unlock()
		return nil, utils.ErrAlreadyClaimed
	}
	ambulance.Status = models.AmbulanceStatusAssigned
	ambulance.CurrentEmergencyID = emergencyID
	copied := *ambulance
	hook := s.onClaim
	s.mu.Unlock()

	if hook != nil {
		hook(ambulanceID)
	}
	return &copied, nil
}

func (s *fakeAmbulanceStore) Release(ctx context.Context, ambulanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ambulance, ok := s.ambulances[ambulanceID]
	if !ok {
		return utils.NewAmbulanceNotFoundError()
	}
	if ambulance.Status == models.AmbulanceStatusAvailable {
		return nil
	}
	ambulance.Status = models.AmbulanceStatusAvailable
	ambulance.CurrentEmergencyID = ""
	ambulance.TotalRides++
	return nil
}

func (s *fakeAmbulanceStore) Create(ctx context.Context, ambulance *models.Ambulance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ambulances {
		if existing.VehicleNumber == ambulance.VehicleNumber {
			return utils.NewConflictError("vehicle number already registered")
		}
	}
	copied := *ambulance
	s.ambulances[ambulance.ID] = &copied
	return nil
}

func (s *fakeAmbulanceStore) UpdateLocation(ctx context.Context, ambulanceID string, latitude, longitude float64, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ambulance, ok := s.ambulances[ambulanceID]
	if !ok {
		return utils.NewAmbulanceNotFoundError()
	}
	ambulance.Location = models.AmbulanceLocation{
		Latitude:    latitude,
		Longitude:   longitude,
		Address:     address,
		LastUpdated: time.Now(),
	}
	return nil
}

func (s *fakeAmbulanceStore) SetAvailability(ctx context.Context, ambulanceID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ambulance, ok := s.ambulances[ambulanceID]
	if !ok {
		return utils.NewAmbulanceNotFoundError()
	}
	if ambulance.CurrentEmergencyID != "" {
		return utils.NewConflictError("ambulance has an active emergency")
	}
	ambulance.Status = status
	return nil
}

func (s *fakeAmbulanceStore) UpdateStatus(ctx context.Context, ambulanceID, emergencyID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ambulance, ok := s.ambulances[ambulanceID]
	if !ok {
		return utils.NewAmbulanceNotFoundError()
	}
	if ambulance.CurrentEmergencyID != emergencyID {
		return utils.NewForbiddenError("ambulance is not assigned to this emergency")
	}
	ambulance.Status = status
	return nil
}

type fakeHospitalStore struct {
	mu        sync.Mutex
	hospitals map[string]*models.Hospital

	// afterList runs once after ListActive returns, letting tests slip a
	// competing pre-alert between ranking and reserving.
	afterList func()
}

func newFakeHospitalStore(hospitals ...models.Hospital) *fakeHospitalStore {
	store := &fakeHospitalStore{hospitals: make(map[string]*models.Hospital)}
	for i := range hospitals {
		copied := hospitals[i]
		store.hospitals[copied.ID] = &copied
	}
	return store
}

func (s *fakeHospitalStore) GetByID(ctx context.Context, id string) (*models.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hospital, ok := s.hospitals[id]
	if !ok {
		return nil, utils.NewHospitalNotFoundError()
	}
	copied := *hospital
	return &copied, nil
}

func (s *fakeHospitalStore) ListActive(ctx context.Context) ([]models.Hospital, error) {
	s.mu.Lock()
	var out []models.Hospital
	for _, h := range s.hospitals {
		if h.IsActive {
			out = append(out, *h)
		}
	}
	hook := s.afterList
	s.afterList = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *fakeHospitalStore) Create(ctx context.Context, hospital *models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *hospital
	s.hospitals[hospital.ID] = &copied
	return nil
}

func (s *fakeHospitalStore) UpdateBedAvailability(ctx context.Context, hospitalID, bedType string, available int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hospital, ok := s.hospitals[hospitalID]
	if !ok {
		return utils.NewHospitalNotFoundError()
	}
	if available < 0 {
		return utils.NewBadRequestError("available beds cannot be negative")
	}
	counter := s.counter(hospital, bedType)
	if available > counter.Total {
		return utils.NewBadRequestError("available beds exceed total capacity")
	}
	counter.Available = available
	return nil
}

func (s *fakeHospitalStore) counter(hospital *models.Hospital, bedType string) *models.BedCounter {
	switch bedType {
	case models.BedTypeICU:
		return &hospital.Beds.ICU
	default:
		return &hospital.Beds.Emergency
	}
}

func (s *fakeHospitalStore) ReserveBed(ctx context.Context, hospitalID, bedType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hospital, ok := s.hospitals[hospitalID]
	if !ok {
		return utils.NewHospitalNotFoundError()
	}
	counter := s.counter(hospital, bedType)
	if counter.Available <= 0 {
		return utils.ErrNoBedsAvailable
	}
	counter.Available--
	return nil
}

func (s *fakeHospitalStore) ReleaseBed(ctx context.Context, hospitalID, bedType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hospital, ok := s.hospitals[hospitalID]
	if !ok {
		return utils.NewHospitalNotFoundError()
	}
	counter := s.counter(hospital, bedType)
	if counter.Available < counter.Total {
		counter.Available++
	}
	return nil
}

type fanoutCall struct {
	emergencyID string
	payload     models.NotificationPayload
	targets     []models.NotificationTarget
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []fanoutCall
}

func (n *fakeNotifier) Fanout(ctx context.Context, emergencyID string, payload models.NotificationPayload, targets []models.NotificationTarget) []models.DispatchResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, fanoutCall{emergencyID: emergencyID, payload: payload, targets: targets})
	results := make([]models.DispatchResult, 0, len(targets))
	for _, target := range targets {
		results = append(results, models.DispatchResult{Target: target, Channel: models.ChannelSMS, Success: true})
	}
	return results
}

func (n *fakeNotifier) callsOfType(notificationType string) []fanoutCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []fanoutCall
	for _, call := range n.calls {
		if call.payload.Type == notificationType {
			out = append(out, call)
		}
	}
	return out
}

type fakeInsuranceVerifier struct {
	snapshot models.InsuranceSnapshot
	result   *models.VerificationResult
	err      error
}

func (v *fakeInsuranceVerifier) Verify(ctx context.Context, userID string) (models.InsuranceSnapshot, *models.VerificationResult, error) {
	return v.snapshot, v.result, v.err
}

// syncQueue runs submitted tasks inline, so trigger fan-out completes before
// the test continues.
type syncQueue struct {
	mu   sync.Mutex
	errs []error
}

func (q *syncQueue) Submit(task workers.Task) bool {
	err := task.Run(context.Background())
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
	return true
}

func testAmbulance(id string, lat, lon float64) models.Ambulance {
	return models.Ambulance{
		ID:            id,
		VehicleNumber: "TS09-" + id,
		Type:          models.AmbulanceTypeBasic,
		Status:        models.AmbulanceStatusAvailable,
		Driver:        models.DriverInfo{Name: "Driver " + id, Phone: "+911234500" + id},
		Location:      models.AmbulanceLocation{Latitude: lat, Longitude: lon},
		Provider:      "108",
		IsActive:      true,
	}
}

func testHospital(id string, lat, lon float64, icuBeds, emergencyBeds int) models.Hospital {
	return models.Hospital{
		ID:   id,
		Name: "Hospital " + id,
		Contact: models.HospitalContact{
			Phone:          "+914012345" + id,
			EmergencyPhone: "+914012346" + id,
		},
		Location: models.FacilityLocation{Latitude: lat, Longitude: lon, Address: id + " Street"},
		Facilities: models.HospitalFacilities{
			EmergencyWard: true,
			ICU:           true,
		},
		Beds: models.BedAvailability{
			ICU:       models.BedCounter{Total: 10, Available: icuBeds},
			Emergency: models.BedCounter{Total: 20, Available: emergencyBeds},
		},
		IsActive: true,
	}
}

func testPatient() models.PatientSnapshot {
	return models.PatientSnapshot{
		Name:        "Asha Rao",
		Age:         54,
		Gender:      "female",
		BloodGroup:  "B+",
		PhoneNumber: "+919876543210",
		Contacts: []models.EmergencyContact{
			{Name: "Ravi Rao", Phone: "+919876543211", Relationship: "spouse"},
		},
	}
}

func testTriggerRequest(emergencyType string) *models.TriggerEmergencyRequest {
	return &models.TriggerEmergencyRequest{
		Location:      models.EmergencyLocation{Latitude: 17.4100, Longitude: 78.4800},
		EmergencyType: emergencyType,
	}
}
