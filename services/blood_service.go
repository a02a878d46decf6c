package services

import (
	"context"
	"fmt"
	"time"

	"lifeline/config"
	"lifeline/models"
	"lifeline/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BloodStore is the persistence surface for blood banks and requests.
type BloodStore interface {
	GetBankByID(ctx context.Context, id string) (*models.BloodBank, error)
	ListBanksWithStock(ctx context.Context, bloodGroup string) ([]models.BloodBank, error)
	DebitUnits(ctx context.Context, bankID, bloodGroup string, units int) error
	CreditUnits(ctx context.Context, bankID, bloodGroup string, units int) error
	UpdateStock(ctx context.Context, bankID, bloodGroup string, units int) error
	CreateRequest(ctx context.Context, request *models.BloodRequest) error
	GetRequestByID(ctx context.Context, id string) (*models.BloodRequest, error)
	SetMatched(ctx context.Context, requestID string, matched []models.MatchedBloodBank) error
	Fulfil(ctx context.Context, requestID, bankID string) error
	CancelRequest(ctx context.Context, requestID, reason string) error
	ListRequestsByUser(ctx context.Context, userID string, limit int64) ([]models.BloodRequest, error)
}

// AlertMarker flips a write-once alert flag on an emergency record.
type AlertMarker interface {
	MarkAlertSent(ctx context.Context, id, flag string) (bool, error)
}

// BloodService runs the blood request flow: open a request, match it
// against nearby banks holding the group, and settle it by debiting the
// fulfilling bank's stock. Requests stop matching 24 hours after creation;
// nothing sweeps them, expiry is checked wherever it matters.
type BloodService struct {
	store    BloodStore
	notifier Notifier
	alerts   AlertMarker

	searchRadiusKm float64
}

func NewBloodService(store BloodStore, notifier Notifier, alerts AlertMarker, cfg *config.Config) *BloodService {
	return &BloodService{
		store:          store,
		notifier:       notifier,
		alerts:         alerts,
		searchRadiusKm: cfg.BloodBankSearchRadius,
	}
}

// CreateRequest opens a request and immediately runs the match. A request
// that matches no bank stays pending and can be re-matched later.
func (bs *BloodService) CreateRequest(ctx context.Context, userID string, req *models.CreateBloodRequestRequest) (*models.BloodRequest, error) {
	if !models.IsValidBloodGroup(req.BloodGroup) {
		return nil, utils.NewBadRequestError("invalid blood group: " + req.BloodGroup)
	}
	if !utils.IsValidCoordinate(req.Location.Latitude, req.Location.Longitude) {
		return nil, utils.NewBadRequestError("invalid coordinates")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = "high"
	}

	now := time.Now()
	request := &models.BloodRequest{
		ID:               uuid.New().String(),
		UserID:           userID,
		EmergencyID:      req.EmergencyID,
		PatientName:      req.PatientName,
		PatientAge:       req.PatientAge,
		PatientGender:    req.PatientGender,
		PatientPhone:     req.PatientPhone,
		BloodGroup:       req.BloodGroup,
		UnitsRequired:    req.UnitsRequired,
		Urgency:          urgency,
		Location:         req.Location,
		HospitalID:       req.HospitalID,
		MedicalCondition: req.MedicalCondition,
		Status:           models.BloodRequestStatusPending,
		ExpiresAt:        now.Add(models.BloodRequestValidity),
	}

	if err := bs.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"requestId":  request.ID,
		"bloodGroup": request.BloodGroup,
		"units":      request.UnitsRequired,
	}).Info("Blood request created")

	matched, err := bs.Match(ctx, request.ID)
	if err != nil {
		logrus.Warnf("Initial match for blood request %s failed: %v", request.ID, err)
		return request, nil
	}
	request.MatchedBloodBanks = matched
	if len(matched) > 0 {
		request.Status = models.BloodRequestStatusMatched
	}

	return request, nil
}

// Match ranks banks holding the group within the search radius, nearest
// first, and records them on the request. Expired requests never match.
func (bs *BloodService) Match(ctx context.Context, requestID string) ([]models.MatchedBloodBank, error) {
	request, err := bs.store.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.BloodRequestStatusPending {
		return nil, utils.NewConflictError("blood request is not pending")
	}
	if request.IsExpired(time.Now()) {
		return nil, utils.NewConflictError("blood request has expired")
	}

	banks, err := bs.store.ListBanksWithStock(ctx, request.BloodGroup)
	if err != nil {
		return nil, err
	}

	origin := utils.Coordinate{
		Latitude:  request.Location.Latitude,
		Longitude: request.Location.Longitude,
	}
	ranked := utils.RankByDistance(origin, banks, bs.searchRadiusKm)
	if len(ranked) == 0 {
		// Second tier: doubled radius before leaving the request pending.
		ranked = utils.RankByDistance(origin, banks, bs.searchRadiusKm*2)
	}
	if len(ranked) == 0 {
		logrus.WithField("requestId", requestID).Warn("No blood bank matched within radius")
		return nil, nil
	}

	matched := make([]models.MatchedBloodBank, 0, len(ranked))
	for _, candidate := range ranked {
		matched = append(matched, models.MatchedBloodBank{
			BloodBankID:    candidate.Item.ID,
			Name:           candidate.Item.Name,
			Phone:          candidate.Item.Contact.Phone,
			Address:        candidate.Item.Location.Address,
			Distance:       candidate.Distance,
			AvailableUnits: candidate.Item.Stock[request.BloodGroup],
		})
	}

	if err := bs.store.SetMatched(ctx, requestID, matched); err != nil {
		return nil, err
	}

	bs.notifyBanks(ctx, request, matched)

	return matched, nil
}

func (bs *BloodService) notifyBanks(ctx context.Context, request *models.BloodRequest, matched []models.MatchedBloodBank) {
	if bs.notifier == nil {
		return
	}

	// Requests raised from an emergency carry its write-once flag, so a
	// retried match never alerts the banks twice.
	if request.EmergencyID != "" && bs.alerts != nil {
		sent, err := bs.alerts.MarkAlertSent(ctx, request.EmergencyID, models.AlertBloodBank)
		if err != nil || !sent {
			if err != nil {
				logrus.Warnf("Failed to mark blood bank alert for emergency %s: %v", request.EmergencyID, err)
			}
			return
		}
	}

	body := fmt.Sprintf("URGENT BLOOD REQUEST\nGroup: %s, Units: %d\nPatient: %s\nContact: %s\nRequest ID: %s",
		request.BloodGroup, request.UnitsRequired, request.PatientName, request.PatientPhone, request.ID)

	targets := make([]models.NotificationTarget, 0, len(matched))
	for _, bank := range matched {
		targets = append(targets, models.NotificationTarget{
			Kind:  models.TargetBloodBank,
			Name:  bank.Name,
			Phone: bank.Phone,
		})
	}

	bs.notifier.Fanout(ctx, request.EmergencyID, models.NotificationPayload{
		Type:    models.NotificationBloodRequest,
		Title:   "Urgent blood request",
		Body:    body,
		SMSText: body,
		Data:    map[string]string{"requestId": request.ID},
	}, targets)
}

// Fulfil settles the request against one bank, debiting its stock in the
// same guarded write that protects against going negative.
func (bs *BloodService) Fulfil(ctx context.Context, requestID, bankID string) (*models.BloodRequest, error) {
	request, err := bs.store.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.BloodRequestStatusPending && request.Status != models.BloodRequestStatusMatched {
		return nil, utils.NewConflictError("blood request already settled")
	}
	if request.IsExpired(time.Now()) {
		return nil, utils.NewConflictError("blood request has expired")
	}

	if err := bs.store.DebitUnits(ctx, bankID, request.BloodGroup, request.UnitsRequired); err != nil {
		return nil, err
	}

	if err := bs.store.Fulfil(ctx, requestID, bankID); err != nil {
		// The settle lost to a concurrent cancel or fulfil. Put the
		// debited units back before surfacing the conflict.
		if creditErr := bs.store.CreditUnits(ctx, bankID, request.BloodGroup, request.UnitsRequired); creditErr != nil {
			logrus.Errorf("Failed to credit %d units back to bank %s: %v", request.UnitsRequired, bankID, creditErr)
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"requestId": requestID,
		"bankId":    bankID,
	}).Info("Blood request fulfilled")

	return bs.store.GetRequestByID(ctx, requestID)
}

func (bs *BloodService) Cancel(ctx context.Context, requestID, reason string) error {
	return bs.store.CancelRequest(ctx, requestID, reason)
}

func (bs *BloodService) GetRequest(ctx context.Context, requestID string) (*models.BloodRequest, error) {
	return bs.store.GetRequestByID(ctx, requestID)
}

func (bs *BloodService) History(ctx context.Context, userID string, limit int64) ([]models.BloodRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return bs.store.ListRequestsByUser(ctx, userID, limit)
}

func (bs *BloodService) UpdateStock(ctx context.Context, bankID string, req *models.UpdateBloodStockRequest) error {
	return bs.store.UpdateStock(ctx, bankID, req.BloodGroup, req.Units)
}

func (bs *BloodService) GetBank(ctx context.Context, bankID string) (*models.BloodBank, error) {
	return bs.store.GetBankByID(ctx, bankID)
}
